package model

import "testing"

func TestListOptions_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		input      ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListOptions{}, 20, 0},
		{"negative limit", ListOptions{Limit: -5}, 20, 0},
		{"over max", ListOptions{Limit: 1000}, 500, 0},
		{"negative offset", ListOptions{Limit: 10, Offset: -3}, 10, 0},
		{"valid", ListOptions{Limit: 50, Offset: 10, Action: "chop"}, 50, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Clamp()
			if tt.input.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.input.Limit, tt.wantLimit)
			}
			if tt.input.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", tt.input.Offset, tt.wantOffset)
			}
		})
	}
}

func TestDefaultListOptions(t *testing.T) {
	opts := DefaultListOptions()
	if opts.Limit != 20 || opts.Offset != 0 || opts.Action != "" {
		t.Errorf("DefaultListOptions() = %+v", opts)
	}
}

func TestListOptions_Page(t *testing.T) {
	opts := ListOptions{Limit: 2, Offset: 2}
	tests := []struct {
		n, total int
		wantMore bool
	}{
		{2, 5, true},
		{1, 3, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		pg := opts.Page(tt.n, tt.total)
		if pg.HasMore != tt.wantMore || pg.Total != tt.total || pg.Limit != 2 || pg.Offset != 2 {
			t.Errorf("Page(%d, %d) = %+v, want HasMore %v", tt.n, tt.total, pg, tt.wantMore)
		}
	}
}
