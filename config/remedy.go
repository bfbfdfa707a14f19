package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// Remedy returns the documented fix for err, or "" when none applies.
func Remedy(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, af.ErrMissingCredential), errors.Is(err, af.ErrAuth):
		return "Set GOOGLE_API_KEY (export it or add it to .env). Get a key at https://aistudio.google.com/apikey."
	case errors.Is(err, ErrMissingDependency):
		return "Install the missing dependencies: run `go mod download` and start any service the program needs (REDIS_URL, MILVUS_ADDRESS)."
	case errors.Is(err, af.ErrRateLimited):
		return "The API rate limit was hit. Wait a minute and retry, or upgrade your quota."
	case errors.Is(err, af.ErrModelNotFound):
		return "Use a valid model id such as gemini-3-flash-preview or gemini-3-pro-preview (set GEMINI_MODEL)."
	}
	return ""
}

// Report prints err and its remedy to w.
func Report(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("Error: %v", err))
	if r := Remedy(err); r != "" {
		fmt.Fprintln(w, color.YellowString("Fix: %s", r))
	}
}
