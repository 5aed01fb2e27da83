package main

import (
	"testing"
	"time"

	"github.com/tmorel/cleansync/internal/model"
)

func TestResolveDateCanonical(t *testing.T) {
	got, err := resolveDate("2024-03-12")
	if err != nil {
		t.Fatalf("resolveDate failed: %v", err)
	}
	if got != "2024-03-12" {
		t.Errorf("resolveDate = %q, want unchanged canonical form", got)
	}
}

func TestResolveDateEmptyMeansToday(t *testing.T) {
	got, err := resolveDate("")
	if err != nil {
		t.Fatalf("resolveDate failed: %v", err)
	}
	if got != time.Now().Format(model.DateLayout) {
		t.Errorf("resolveDate(\"\") = %q, want today", got)
	}
}

func TestResolveDateNaturalLanguage(t *testing.T) {
	got, err := resolveDate("yesterday")
	if err != nil {
		t.Fatalf("resolveDate failed: %v", err)
	}
	want := time.Now().AddDate(0, 0, -1).Format(model.DateLayout)
	if got != want {
		t.Errorf("resolveDate(\"yesterday\") = %q, want %q", got, want)
	}
}

func TestResolveDateGarbage(t *testing.T) {
	if _, err := resolveDate("the heat death of the universe"); err == nil {
		t.Error("resolveDate accepted nonsense input")
	}
}
