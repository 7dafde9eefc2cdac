package main

import "testing"

func TestPresetsCommandListsKnownPresets(t *testing.T) {
	out, _, err := runCLI(t, "", "presets")
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	requireContains(t, out, "gnip")
	requireContains(t, out, "patent")
	requireContains(t, out, "publication")
	requireContains(t, out, "title, abstract")
}
