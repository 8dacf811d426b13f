package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterSet(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    []string
		wantErr bool
	}{
		{name: "json array", raw: `["author"]`, want: []string{"author"}},
		{name: "json array unsorted", raw: `["uploader", "download_count"]`, want: []string{"download_count", "uploader"}},
		{name: "empty array", raw: `[]`, want: []string{}},
		{name: "disabled literal", raw: "false", want: nil},
		{name: "disabled bool", raw: false, want: nil},
		{name: "nil", raw: nil, want: nil},
		{name: "yaml list", raw: []interface{}{"body", "author"}, want: []string{"author", "body"}},
		{name: "string slice", raw: []string{"a", "a"}, want: []string{"a"}},
		{name: "true is rejected", raw: true, wantErr: true},
		{name: "bad json", raw: `["author"`, wantErr: true},
		{name: "object", raw: `{"author": true}`, wantErr: true},
		{name: "non-string item", raw: `["author", 1]`, wantErr: true},
		{name: "empty name", raw: `[""]`, wantErr: true},
		{name: "bare word", raw: "author", wantErr: true},
		{name: "unsupported type", raw: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilterSet("filter_release_keys", tt.raw)
			if tt.wantErr {
				var cfgErr *Error
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "filter_release_keys", cfgErr.Key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
