package bot

import (
	"testing"

	"kitsubot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func samplePage() *models.EntryPage {
	return &models.EntryPage{
		Entries: []models.LibraryEntry{
			{
				Id:         "900",
				Attributes: models.EntryAttributes{Status: "current", Progress: 3},
				Relationships: models.EntryRelationships{
					Anime: models.RelationshipData{Data: &models.ResourceIdentifier{Id: "11", Type: "anime"}},
				},
			},
			{
				Id:         "901",
				Attributes: models.EntryAttributes{Status: "planned", Progress: 0},
				Relationships: models.EntryRelationships{
					Anime: models.RelationshipData{Data: &models.ResourceIdentifier{Id: "12", Type: "anime"}},
				},
			},
		},
		Anime: map[string]models.Anime{
			"11": {Id: "11", Attributes: models.AnimeAttributes{CanonicalTitle: "Cowboy Bebop", EpisodeCount: 26}},
			"12": {Id: "12", Attributes: models.AnimeAttributes{CanonicalTitle: "Mushishi"}},
		},
		Prev: int64p(0),
		Next: int64p(20),
	}
}

func TestFormatEntryListIsDeterministic(t *testing.T) {
	text1, keyboard1 := FormatEntryList(42, samplePage())
	text2, keyboard2 := FormatEntryList(42, samplePage())

	assert.Equal(t, text1, text2)
	assert.Equal(t, keyboard1, keyboard2)
}

func TestFormatEntryListBody(t *testing.T) {
	text, keyboard := FormatEntryList(42, samplePage())

	assert.Contains(t, text, "Cowboy Bebop — 3/26")
	assert.Contains(t, text, "Mushishi — 0/?")

	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, 3)
	assert.Equal(t, "/42/detail/11/", keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "/42/detail/12/", keyboard.InlineKeyboard[1][0].CallbackData)

	nav := keyboard.InlineKeyboard[2]
	require.Len(t, nav, 2)
	assert.Equal(t, "/42/offset/0/", nav[0].CallbackData)
	assert.Equal(t, "/42/offset/20/", nav[1].CallbackData)
}

func TestFormatEntryListEscapesTitles(t *testing.T) {
	page := samplePage()
	anime := page.Anime["11"]
	anime.Attributes.CanonicalTitle = "Steins;Gate <0>"
	page.Anime["11"] = anime

	text, _ := FormatEntryList(42, page)

	assert.Contains(t, text, "Steins;Gate &lt;0&gt;")
}

func TestFormatEntryListEmpty(t *testing.T) {
	text, keyboard := FormatEntryList(42, &models.EntryPage{})

	assert.Equal(t, "Your anime list is empty.", text)
	assert.Nil(t, keyboard)
}

func TestFormatEntryListWithoutNeighbourPagesHasNoNavRow(t *testing.T) {
	page := samplePage()
	page.Prev = nil
	page.Next = nil

	_, keyboard := FormatEntryList(42, page)

	require.NotNil(t, keyboard)
	assert.Len(t, keyboard.InlineKeyboard, 2)
}

func TestFormatEntryDetailOffersNextEpisode(t *testing.T) {
	page := samplePage()
	anime := page.Anime["11"]
	detail := &models.EntryDetail{Entry: page.Entries[0], Anime: &anime}

	text, keyboard := FormatEntryDetail(42, detail)

	assert.Contains(t, text, "Cowboy Bebop")
	assert.Contains(t, text, "Progress: 3/26")

	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "watched episode 4", keyboard.InlineKeyboard[0][0].Text)
	assert.Equal(t, "/42/progress/11/900/4/", keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "/42/offset/0/", keyboard.InlineKeyboard[1][0].CallbackData)
}

func TestFormatEntryDetailAtFinalEpisodeHasNoProgressButton(t *testing.T) {
	page := samplePage()
	anime := page.Anime["11"]
	entry := page.Entries[0]
	entry.Attributes.Progress = 26
	detail := &models.EntryDetail{Entry: entry, Anime: &anime}

	_, keyboard := FormatEntryDetail(42, detail)

	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, 1)
	assert.Equal(t, "back to list", keyboard.InlineKeyboard[0][0].Text)
}

func TestFormatEntryDetailUnknownEpisodeCountStillOffersNextEpisode(t *testing.T) {
	page := samplePage()
	anime := page.Anime["12"]
	detail := &models.EntryDetail{Entry: page.Entries[1], Anime: &anime}

	_, keyboard := FormatEntryDetail(42, detail)

	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "/42/progress/12/901/1/", keyboard.InlineKeyboard[0][0].CallbackData)
}

func TestFormatProgressConfirmation(t *testing.T) {
	text, keyboard := FormatProgressConfirmation(42, "11", 5)

	assert.Equal(t, "Successful update to episode 5", text)
	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "back to anime", keyboard.InlineKeyboard[0][0].Text)
	assert.Equal(t, "/42/detail/11/", keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "back to list", keyboard.InlineKeyboard[1][0].Text)
	assert.Equal(t, "/42/offset/0/", keyboard.InlineKeyboard[1][0].CallbackData)
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short"))

	long := "An Extremely Long Anime Title That Keeps Going"
	got := truncateLabel(long)
	assert.LessOrEqual(t, len([]rune(got)), maxButtonLabel)
	assert.Equal(t, "…", string([]rune(got)[len([]rune(got))-1]))
}
