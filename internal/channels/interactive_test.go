package channels

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildWhatsAppInteractive_Buttons(t *testing.T) {
	content := InteractiveContent{
		Type:   InteractiveButton,
		Header: "Pick one",
		Body:   "How can we help?",
		Footer: "Support",
		Buttons: []InteractiveButtonDef{
			{ID: "b1", Title: "Billing"},
			{ID: "b2", Title: "Shipping"},
		},
	}

	p, err := BuildWhatsAppInteractive("+15551234567", content)
	if err != nil {
		t.Fatalf("BuildWhatsAppInteractive: %v", err)
	}
	if p.To != "+15551234567" {
		t.Fatalf("unexpected recipient %q", p.To)
	}
	if p.Interactive["type"] != "button" {
		t.Fatalf("unexpected type %v", p.Interactive["type"])
	}
	header := p.Interactive["header"].(map[string]any)
	if header["type"] != "text" || header["text"] != "Pick one" {
		t.Fatalf("unexpected header %v", header)
	}
	action := p.Interactive["action"].(map[string]any)
	buttons := action["buttons"].([]map[string]any)
	if len(buttons) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(buttons))
	}
	reply := buttons[0]["reply"].(map[string]any)
	if buttons[0]["type"] != "reply" || reply["id"] != "b1" || reply["title"] != "Billing" {
		t.Fatalf("unexpected button shape %v", buttons[0])
	}
}

func TestBuildWhatsAppInteractive_List(t *testing.T) {
	content := InteractiveContent{
		Type: InteractiveList,
		Body: "Choose a topic",
		Sections: []InteractiveSection{
			{Title: "Orders", Rows: []InteractiveRow{
				{ID: "r1", Title: "Track order", Description: "Where is it"},
				{ID: "r2", Title: "Cancel order"},
			}},
		},
	}

	p, err := BuildWhatsAppInteractive("u1", content)
	if err != nil {
		t.Fatalf("BuildWhatsAppInteractive: %v", err)
	}
	action := p.Interactive["action"].(map[string]any)
	if action["button"] != "Options" {
		t.Fatalf("expected default opener label, got %v", action["button"])
	}
	sections := action["sections"].([]map[string]any)
	if len(sections) != 1 || sections[0]["title"] != "Orders" {
		t.Fatalf("unexpected sections %v", sections)
	}
	rows := sections[0]["rows"].([]map[string]any)
	if len(rows) != 2 || rows[0]["description"] != "Where is it" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if _, ok := rows[1]["description"]; ok {
		t.Fatalf("empty description should be omitted, got %v", rows[1])
	}
}

func TestBuildWhatsAppInteractive_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content InteractiveContent
		detail  string
	}{
		{"missing body", InteractiveContent{Type: InteractiveButton, Buttons: []InteractiveButtonDef{{ID: "a", Title: "A"}}}, "body"},
		{"unknown type", InteractiveContent{Type: "carousel", Body: "b"}, "type"},
		{"no buttons", InteractiveContent{Type: InteractiveButton, Body: "b"}, "at least one button"},
		{"too many buttons", InteractiveContent{Type: InteractiveButton, Body: "b", Buttons: []InteractiveButtonDef{
			{ID: "1", Title: "a"}, {ID: "2", Title: "b"}, {ID: "3", Title: "c"}, {ID: "4", Title: "d"},
		}}, "at most 3"},
		{"button title too long", InteractiveContent{Type: InteractiveButton, Body: "b", Buttons: []InteractiveButtonDef{
			{ID: "1", Title: strings.Repeat("x", 21)},
		}}, "exceeds 20"},
		{"button missing id", InteractiveContent{Type: InteractiveButton, Body: "b", Buttons: []InteractiveButtonDef{
			{Title: "ok"},
		}}, "id and title"},
		{"no sections", InteractiveContent{Type: InteractiveList, Body: "b"}, "at least one section"},
		{"empty section", InteractiveContent{Type: InteractiveList, Body: "b", Sections: []InteractiveSection{{}}}, "no rows"},
		{"row missing title", InteractiveContent{Type: InteractiveList, Body: "b", Sections: []InteractiveSection{
			{Rows: []InteractiveRow{{ID: "r"}}},
		}}, "id and title"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildWhatsAppInteractive("u", tc.content)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInteractiveContent) {
				t.Fatalf("expected ErrInteractiveContent, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.detail) {
				t.Fatalf("error %q does not mention %q", err, tc.detail)
			}
		})
	}
}

func TestBuildWhatsAppInteractive_RowCap(t *testing.T) {
	rows := make([]InteractiveRow, 11)
	for i := range rows {
		rows[i] = InteractiveRow{ID: "r", Title: "t"}
	}
	content := InteractiveContent{
		Type:     InteractiveList,
		Body:     "b",
		Sections: []InteractiveSection{{Rows: rows}},
	}
	if _, err := BuildWhatsAppInteractive("u", content); err == nil {
		t.Fatal("expected error when rows exceed the cap")
	}
}
