// Package models holds the fixed menu of hosted models a chat session can target.
package models

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrNotFound is returned by Resolve for a selection key outside the menu.
var ErrNotFound = errors.New("models: no model for selection key")

// ModelEntry is one selectable menu item.
type ModelEntry struct {
	// Key is the short selection key typed by the user, "1" through "6".
	Key string `json:"key" yaml:"key"`
	// Name is the human readable label shown in the menu and written to the log.
	Name string `json:"name" yaml:"name"`
	// ID is the provider model identifier sent in the request body.
	ID string `json:"id" yaml:"id"`
}

// registry is ordered by Key. It is never handed out directly.
var registry = [...]ModelEntry{
	{Key: "1", Name: "DeepSeek R1 Turbo (Recommended)", ID: "tngtech/deepseek-r1t2-chimera:free"},
	{Key: "2", Name: "Llama 2 70B", ID: "meta-llama/llama-2-70b-chat"},
	{Key: "3", Name: "Mistral 7B", ID: "mistralai/mistral-7b-instruct"},
	{Key: "4", Name: "Neural Chat 7B", ID: "intel/neural-chat-7b"},
	{Key: "5", Name: "Toppy M 7B", ID: "undi95/toppy-m-7b"},
	{Key: "6", Name: "Qwen 7B Chat", ID: "qwen/qwen-7b-chat"},
}

// List returns a copy of the menu in display order.
func List() []ModelEntry {
	out := make([]ModelEntry, len(registry))
	copy(out, registry[:])
	return out
}

// Resolve looks up a selection key. Surrounding whitespace is ignored.
func Resolve(key string) (ModelEntry, error) {
	key = strings.TrimSpace(key)
	for _, m := range registry {
		if m.Key == key {
			return m, nil
		}
	}
	return ModelEntry{}, fmt.Errorf("%w: %q", ErrNotFound, key)
}

// KeyRange describes the valid keys for prompts, e.g. "1-6".
func KeyRange() string {
	return registry[0].Key + "-" + registry[len(registry)-1].Key
}

// Rule is the horizontal separator used around menus and prompts.
var Rule = strings.Repeat("=", 80)

// RenderMenu writes the model menu to w. Styling is resolved against w, so a
// non-terminal writer receives plain text.
func RenderMenu(w io.Writer) {
	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	keyStyle := r.NewStyle().Foreground(lipgloss.Color("46"))
	modelStyle := r.NewStyle().Foreground(lipgloss.Color("86"))

	fmt.Fprintln(w, "\n"+Rule)
	fmt.Fprintln(w, titleStyle.Render("AVAILABLE FREE MODELS"))
	fmt.Fprintln(w, Rule)
	for _, m := range registry {
		fmt.Fprintf(w, "%s %s\n", keyStyle.Render(m.Key+"."), modelStyle.Render(m.Name))
	}
	fmt.Fprintln(w, Rule)
}
