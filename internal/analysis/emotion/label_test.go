package emotion

import "testing"

func TestLabelTitle(t *testing.T) {
	cases := map[Label]string{
		"":        "",
		Joy:       "Joy",
		Neutral:   "Neutral",
		"émotion": "Émotion",
		"ärger":   "Ärger",
		"喜悦":      "喜悦",
	}
	for in, want := range cases {
		if got := in.Title(); got != want {
			t.Fatalf("Label(%q).Title() = %q, want %q", string(in), got, want)
		}
	}
}
