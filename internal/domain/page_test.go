package domain

import "testing"

func TestNewPage(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name     string
		offset   int
		limit    int
		returned int
		next     *string
		previous *string
	}{
		{name: "first full page", offset: 0, limit: 10, returned: 10, next: str("10")},
		{name: "first partial page", offset: 0, limit: 10, returned: 3},
		{name: "empty first page", offset: 0, limit: 10, returned: 0},
		{name: "middle page", offset: 20, limit: 10, returned: 10, next: str("30"), previous: str("10")},
		{name: "offset smaller than limit", offset: 5, limit: 10, returned: 2, previous: str("-5")},
		{name: "full page with nothing after", offset: 10, limit: 5, returned: 5, next: str("15"), previous: str("5")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := NewPage(tc.offset, tc.limit, tc.returned)
			if page.Limit != tc.limit || page.Offset != tc.offset {
				t.Fatalf("unexpected window: %+v", page)
			}
			assertCursor(t, "next", page.Next, tc.next)
			assertCursor(t, "previous", page.Previous, tc.previous)
		})
	}
}

func assertCursor(t *testing.T, name string, got, want *string) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Fatalf("%s: expected absent cursor, got %q", name, *got)
	case want != nil && got == nil:
		t.Fatalf("%s: expected %q, got absent cursor", name, *want)
	case want != nil && *got != *want:
		t.Fatalf("%s: expected %q, got %q", name, *want, *got)
	}
}

func TestValidateWindow(t *testing.T) {
	tests := []struct {
		limit, offset int
		want          error
	}{
		{limit: 1, offset: 0},
		{limit: 100, offset: 500},
		{limit: 0, offset: 0, want: ErrLimitInvalid},
		{limit: 101, offset: 0, want: ErrLimitInvalid},
		{limit: 10, offset: -1, want: ErrOffsetInvalid},
	}

	for _, tc := range tests {
		if got := ValidateWindow(tc.limit, tc.offset); got != tc.want {
			t.Errorf("ValidateWindow(%d, %d) = %v, want %v", tc.limit, tc.offset, got, tc.want)
		}
	}
}

func TestValidateProductWindow(t *testing.T) {
	tests := []struct {
		limit, offset int
		want          error
	}{
		{limit: 1, offset: 0},
		{limit: MaxPageLimit + 1, offset: 0},
		{limit: 0, offset: 0, want: ErrProductLimitInvalid},
		{limit: 10, offset: -1, want: ErrOffsetInvalid},
	}

	for _, tc := range tests {
		if got := ValidateProductWindow(tc.limit, tc.offset); got != tc.want {
			t.Errorf("ValidateProductWindow(%d, %d) = %v, want %v", tc.limit, tc.offset, got, tc.want)
		}
	}
}
