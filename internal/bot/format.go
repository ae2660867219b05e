package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"kitsubot/internal/command"
	"kitsubot/internal/models"
)

const maxButtonLabel = 32

// FormatEntryList renders one page of a user's anime list: an HTML body
// and a keyboard with a detail button per entry plus a navigation row
// encoding the neighbouring page offsets.
func FormatEntryList(kitsuId int64, page *models.EntryPage) (string, *models.InlineKeyboardMarkup) {
	if len(page.Entries) == 0 {
		return "Your anime list is empty.", nil
	}

	var message strings.Builder
	message.WriteString("<b>Your anime list:</b>\n\n")

	rows := make([][]models.InlineKeyboardButton, 0, len(page.Entries)+1)

	for _, entry := range page.Entries {
		title, episodes := describeEntry(entry, page.Anime)

		message.WriteString(fmt.Sprintf("%s — %s\n", html.EscapeString(title), episodes))

		animeId, err := entryAnimeId(entry)
		if err != nil {
			continue
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         truncateLabel(title),
			CallbackData: command.DetailPayload(kitsuId, animeId),
		}})
	}

	if nav := navigationRow(kitsuId, page); len(nav) > 0 {
		rows = append(rows, nav)
	}

	return message.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// FormatEntryDetail renders one entry's detail view with a next-episode
// progress button (when another episode is plausible) and a back-to-list
// button.
func FormatEntryDetail(kitsuId int64, detail *models.EntryDetail) (string, *models.InlineKeyboardMarkup) {
	entry := detail.Entry

	title := "Unknown title"
	var episodeCount int64
	if detail.Anime != nil {
		title = detail.Anime.Attributes.CanonicalTitle
		episodeCount = detail.Anime.Attributes.EpisodeCount
	}

	var message strings.Builder
	message.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(title)))
	message.WriteString(fmt.Sprintf("Progress: %s\n", describeProgress(entry.Attributes.Progress, episodeCount)))
	if entry.Attributes.Status != "" {
		message.WriteString(fmt.Sprintf("Status: %s\n", entry.Attributes.Status))
	}
	if detail.Anime != nil && detail.Anime.Attributes.Slug != "" {
		message.WriteString(fmt.Sprintf("<a href=\"https://kitsu.io/anime/%s\">View on Kitsu</a>\n", detail.Anime.Attributes.Slug))
	}

	var rows [][]models.InlineKeyboardButton

	next := entry.Attributes.Progress + 1
	if episodeCount == 0 || next <= episodeCount {
		animeId := ""
		if detail.Anime != nil {
			animeId = detail.Anime.Id
		}
		if animeId != "" {
			rows = append(rows, []models.InlineKeyboardButton{{
				Text:         fmt.Sprintf("watched episode %d", next),
				CallbackData: command.ProgressPayload(kitsuId, animeId, entry.Id, next),
			}})
		}
	}

	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         "back to list",
		CallbackData: command.OffsetPayload(kitsuId, 0),
	}})

	return message.String(), &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// FormatProgressConfirmation renders the post-update confirmation with
// back-navigation to the detail view and to the first list page.
func FormatProgressConfirmation(kitsuId int64, animeId string, progress int64) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf("Successful update to episode %d", progress)

	var rows [][]models.InlineKeyboardButton
	if id, err := strconv.ParseInt(animeId, 10, 64); err == nil {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         "back to anime",
			CallbackData: command.DetailPayload(kitsuId, id),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         "back to list",
		CallbackData: command.OffsetPayload(kitsuId, 0),
	}})

	return text, &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func describeEntry(entry models.LibraryEntry, anime map[string]models.Anime) (string, string) {
	title := "Unknown title"
	var episodeCount int64

	if data := entry.Relationships.Anime.Data; data != nil {
		if doc, ok := anime[data.Id]; ok {
			title = doc.Attributes.CanonicalTitle
			episodeCount = doc.Attributes.EpisodeCount
		}
	}

	return title, describeProgress(entry.Attributes.Progress, episodeCount)
}

func describeProgress(progress, episodeCount int64) string {
	if episodeCount > 0 {
		return fmt.Sprintf("%d/%d", progress, episodeCount)
	}
	return fmt.Sprintf("%d/?", progress)
}

func entryAnimeId(entry models.LibraryEntry) (int64, error) {
	data := entry.Relationships.Anime.Data
	if data == nil {
		return 0, fmt.Errorf("entry %s has no anime relationship", entry.Id)
	}
	return strconv.ParseInt(data.Id, 10, 64)
}

func navigationRow(kitsuId int64, page *models.EntryPage) []models.InlineKeyboardButton {
	var nav []models.InlineKeyboardButton
	if page.Prev != nil {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "« prev",
			CallbackData: command.OffsetPayload(kitsuId, *page.Prev),
		})
	}
	if page.Next != nil {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "next »",
			CallbackData: command.OffsetPayload(kitsuId, *page.Next),
		})
	}
	return nav
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxButtonLabel {
		return label
	}
	return string(runes[:maxButtonLabel-1]) + "…"
}
