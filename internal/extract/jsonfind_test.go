package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{name: "bare", text: `{"sections":[]}`, want: `{"sections":[]}`, ok: true},
		{name: "fenced", text: "```json\n{\"sections\":[]}\n```", want: `{"sections":[]}`, ok: true},
		{name: "prose around", text: "Here you go:\n{\"sections\":[{\"title\":\"A\"}]}\nLet me know.", want: `{"sections":[{"title":"A"}]}`, ok: true},
		{name: "brace in string", text: `{"sections":[{"title":"see {attachment}"}]}`, want: `{"sections":[{"title":"see {attachment}"}]}`, ok: true},
		{name: "escaped quote", text: `{"a":"he said \"}\" ok"}`, want: `{"a":"he said \"}\" ok"}`, ok: true},
		{name: "skips invalid first", text: `note {not json} then {"sections":[]}`, want: `{"sections":[]}`, ok: true},
		{name: "unclosed brace in prose", text: "Note: the RFP uses { as a placeholder.\n{\"sections\":[{\"title\":\"A\",\"questions\":[]}]}", want: `{"sections":[{"title":"A","questions":[]}]}`, ok: true},
		{name: "truncated", text: `{"sections":[{"title":"A","questions":[`, ok: false},
		{name: "no object", text: `I could not find any requirements.`, ok: false},
		{name: "empty", text: ``, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindJSONObject(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.JSONEq(t, tt.want, string(got))
			}
		})
	}
}
