package parser

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"strips bracketed annotations", "Coldplay - Yellow (Official Video)", "Coldplay - Yellow"},
		{"strips square brackets", "Oasis - Wonderwall [HD]", "Oasis - Wonderwall"},
		{"collapses em dash", "Radiohead — Creep", "Radiohead - Creep"},
		{"collapses en dash", "Radiohead – Creep", "Radiohead - Creep"},
		{"removes trailing noise", "Daft Punk - One More Time Official Music Video", "Daft Punk - One More Time"},
		{"folds whitespace", "  The  Strokes   -  Last Nite ", "The Strokes - Last Nite"},
		{"cjk brackets", "Artist - Track【MV】", "Artist - Track"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.title); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("dash pattern", func(t *testing.T) {
		parsed := Parse("Coldplay - Yellow")
		if len(parsed.Candidates) == 0 {
			t.Fatal("expected at least one candidate")
		}
		top := parsed.Candidates[0]
		if top.Artist != "Coldplay" || top.Track != "Yellow" {
			t.Errorf("got %q / %q, want Coldplay / Yellow", top.Artist, top.Track)
		}
		if top.Pattern != PatternDash {
			t.Errorf("pattern = %s, want dash", top.Pattern)
		}
	})

	t.Run("colon pattern", func(t *testing.T) {
		parsed := Parse("Björk: Hyperballad")
		if len(parsed.Candidates) == 0 {
			t.Fatal("expected at least one candidate")
		}
		top := parsed.Candidates[0]
		if top.Artist != "Björk" || top.Track != "Hyperballad" {
			t.Errorf("got %q / %q", top.Artist, top.Track)
		}
	})

	t.Run("quoted by reverses order", func(t *testing.T) {
		parsed := Parse(`"Hallelujah" by Jeff Buckley`)
		if len(parsed.Candidates) == 0 {
			t.Fatal("expected at least one candidate")
		}
		top := parsed.Candidates[0]
		if top.Artist != "Jeff Buckley" || top.Track != "Hallelujah" {
			t.Errorf("got %q / %q, want Jeff Buckley / Hallelujah", top.Artist, top.Track)
		}
	})

	t.Run("bare by pattern", func(t *testing.T) {
		parsed := Parse("Hallelujah by Jeff Buckley")
		if len(parsed.Candidates) == 0 {
			t.Fatal("expected at least one candidate")
		}
		top := parsed.Candidates[0]
		if top.Artist != "Jeff Buckley" || top.Track != "Hallelujah" {
			t.Errorf("got %q / %q", top.Artist, top.Track)
		}
		if top.Confidence >= 0.90 {
			t.Errorf("bare by confidence = %v, want below dash confidence", top.Confidence)
		}
	})

	t.Run("candidates ranked by confidence", func(t *testing.T) {
		parsed := Parse("Song by Someone - Live Session by The Band")
		for i := 1; i < len(parsed.Candidates); i++ {
			if parsed.Candidates[i].Confidence > parsed.Candidates[i-1].Confidence {
				t.Errorf("candidates out of order at %d: %v > %v",
					i, parsed.Candidates[i].Confidence, parsed.Candidates[i-1].Confidence)
			}
		}
	})

	t.Run("no pattern yields empty candidates", func(t *testing.T) {
		parsed := Parse("lofi beats to study to 24/7")
		if len(parsed.Candidates) != 0 {
			t.Errorf("expected no candidates, got %d", len(parsed.Candidates))
		}
	})

	t.Run("empty title", func(t *testing.T) {
		parsed := Parse("")
		if len(parsed.Candidates) != 0 {
			t.Errorf("expected no candidates, got %d", len(parsed.Candidates))
		}
		if parsed.LikelyAlbum {
			t.Error("empty title flagged as album")
		}
	})

	t.Run("album indicators", func(t *testing.T) {
		for _, title := range []string{
			"Pink Floyd - The Wall (Full Album)",
			"Pink Floyd - The Wall FULL ALBUM",
			"The Wall [Album]",
			"Pink Floyd - The Wall complete cd",
		} {
			if !Parse(title).LikelyAlbum {
				t.Errorf("%q not flagged as album", title)
			}
		}
		if Parse("Coldplay - Yellow").LikelyAlbum {
			t.Error("single flagged as album")
		}
	})

	t.Run("noise annotation lowers confidence", func(t *testing.T) {
		clean := Parse("Coldplay - Yellow")
		noisy := Parse("Coldplay - Yellow (Official Music Video)")
		if len(clean.Candidates) == 0 || len(noisy.Candidates) == 0 {
			t.Fatal("expected candidates for both titles")
		}
		if noisy.Candidates[0].Confidence >= clean.Candidates[0].Confidence {
			t.Errorf("noisy confidence %v not below clean %v",
				noisy.Candidates[0].Confidence, clean.Candidates[0].Confidence)
		}
	})
}
