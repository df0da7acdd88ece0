package channels

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Interactive content types accepted by the generic API surface.
const (
	InteractiveButton = "button"
	InteractiveList   = "list"
)

// WhatsApp-imposed structural limits on interactive payloads.
const (
	maxReplyButtons    = 3
	maxListSections    = 10
	maxListRows        = 10
	maxButtonTitleLen  = 20
	defaultListButton  = "Options"
	headerTypeText     = "text"
	buttonTypeReply    = "reply"
)

// ErrInteractiveContent indicates a structurally invalid generic interactive
// payload (caught before any adapter call).
var ErrInteractiveContent = errors.New("invalid interactive content")

// InteractiveButtonDef is one tappable reply button.
type InteractiveButtonDef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// InteractiveRow is one selectable row inside a list section.
type InteractiveRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// InteractiveSection groups rows under an optional section title.
type InteractiveSection struct {
	Title string           `json:"title,omitempty"`
	Rows  []InteractiveRow `json:"rows"`
}

// InteractiveContent is the channel-agnostic button/list shape accepted by
// the API. The dispatch router converts it into the channel-native structure
// before handing it to an adapter.
type InteractiveContent struct {
	Type   string `json:"type"` // "button" or "list"
	Header string `json:"header,omitempty"`
	Body   string `json:"body"`
	Footer string `json:"footer,omitempty"`

	// Buttons is used when Type is "button" (1..3 entries).
	Buttons []InteractiveButtonDef `json:"buttons,omitempty"`

	// ButtonLabel and Sections are used when Type is "list".
	ButtonLabel string               `json:"button_label,omitempty"`
	Sections    []InteractiveSection `json:"sections,omitempty"`
}

// InteractivePayload is the channel-native interactive message handed to an
// InteractiveSender. Interactive is the WhatsApp "interactive" object
// (header/body/footer plus an action block).
type InteractivePayload struct {
	To          string
	Interactive map[string]any
}

// BuildWhatsAppInteractive validates generic content and shapes it into the
// WhatsApp-native interactive object. Button content becomes a reply-button
// action; list content becomes a section/row action with an opener label.
func BuildWhatsAppInteractive(to string, c InteractiveContent) (InteractivePayload, error) {
	if c.Body == "" {
		return InteractivePayload{}, fmt.Errorf("%w: body is required", ErrInteractiveContent)
	}

	native := map[string]any{
		"type": c.Type,
		"body": map[string]any{"text": c.Body},
	}
	if c.Header != "" {
		native["header"] = map[string]any{"type": headerTypeText, "text": c.Header}
	}
	if c.Footer != "" {
		native["footer"] = map[string]any{"text": c.Footer}
	}

	switch c.Type {
	case InteractiveButton:
		action, err := buttonAction(c.Buttons)
		if err != nil {
			return InteractivePayload{}, err
		}
		native["action"] = action
	case InteractiveList:
		action, err := listAction(c.ButtonLabel, c.Sections)
		if err != nil {
			return InteractivePayload{}, err
		}
		native["action"] = action
	default:
		return InteractivePayload{}, fmt.Errorf("%w: type must be %q or %q", ErrInteractiveContent, InteractiveButton, InteractiveList)
	}

	return InteractivePayload{To: to, Interactive: native}, nil
}

func buttonAction(buttons []InteractiveButtonDef) (map[string]any, error) {
	if len(buttons) == 0 {
		return nil, fmt.Errorf("%w: button content requires at least one button", ErrInteractiveContent)
	}
	if len(buttons) > maxReplyButtons {
		return nil, fmt.Errorf("%w: at most %d buttons", ErrInteractiveContent, maxReplyButtons)
	}
	out := make([]map[string]any, 0, len(buttons))
	for i, b := range buttons {
		if b.ID == "" || b.Title == "" {
			return nil, fmt.Errorf("%w: button %d needs id and title", ErrInteractiveContent, i)
		}
		if utf8.RuneCountInString(b.Title) > maxButtonTitleLen {
			return nil, fmt.Errorf("%w: button %d title exceeds %d characters", ErrInteractiveContent, i, maxButtonTitleLen)
		}
		out = append(out, map[string]any{
			"type": buttonTypeReply,
			"reply": map[string]any{
				"id":    b.ID,
				"title": b.Title,
			},
		})
	}
	return map[string]any{"buttons": out}, nil
}

func listAction(label string, sections []InteractiveSection) (map[string]any, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: list content requires at least one section", ErrInteractiveContent)
	}
	if len(sections) > maxListSections {
		return nil, fmt.Errorf("%w: at most %d sections", ErrInteractiveContent, maxListSections)
	}
	if label == "" {
		label = defaultListButton
	}

	rows := 0
	outSections := make([]map[string]any, 0, len(sections))
	for i, s := range sections {
		if len(s.Rows) == 0 {
			return nil, fmt.Errorf("%w: section %d has no rows", ErrInteractiveContent, i)
		}
		outRows := make([]map[string]any, 0, len(s.Rows))
		for j, r := range s.Rows {
			if r.ID == "" || r.Title == "" {
				return nil, fmt.Errorf("%w: section %d row %d needs id and title", ErrInteractiveContent, i, j)
			}
			row := map[string]any{"id": r.ID, "title": r.Title}
			if r.Description != "" {
				row["description"] = r.Description
			}
			outRows = append(outRows, row)
			rows++
		}
		section := map[string]any{"rows": outRows}
		if s.Title != "" {
			section["title"] = s.Title
		}
		outSections = append(outSections, section)
	}
	if rows > maxListRows {
		return nil, fmt.Errorf("%w: at most %d rows across all sections", ErrInteractiveContent, maxListRows)
	}

	return map[string]any{
		"button":   label,
		"sections": outSections,
	}, nil
}
