package provider

import (
	"fmt"
	"regexp"
	"strings"
)

// Prompt styles supported by every adapter.
const (
	StyleDetailed  = "detailed"
	StyleConcise   = "concise"
	StyleArtistic  = "artistic"
	StyleTechnical = "technical"
)

// Target image-generation tools a prompt can be tuned for.
const (
	TargetMidjourney      = "midjourney"
	TargetDALLE           = "dalle"
	TargetStableDiffusion = "stable-diffusion"
	TargetFlux            = "flux"
)

var styleInstructions = map[string]string{
	StyleDetailed:  "Write a richly detailed image-generation prompt covering subject, composition, lighting, color palette, mood and camera characteristics. Aim for 3-5 sentences.",
	StyleConcise:   "Write a compact image-generation prompt of at most 40 words capturing only the essential subject, style and mood.",
	StyleArtistic:  "Write an evocative, art-directed image-generation prompt emphasizing artistic style, medium, atmosphere and emotional tone over literal description.",
	StyleTechnical: "Write a technically precise image-generation prompt specifying lens, focal length, aperture, lighting setup, rendering style and post-processing terms.",
}

var targetHints = map[string]string{
	TargetMidjourney:      "Format the prompt for Midjourney: comma-separated descriptors, no full sentences required, optionally ending with stylistic parameters.",
	TargetDALLE:           "Format the prompt for DALL-E: natural-language sentences describing the scene explicitly and unambiguously.",
	TargetStableDiffusion: "Format the prompt for Stable Diffusion: weighted comma-separated tags ordered from subject to style, quality tags last.",
	TargetFlux:            "Format the prompt for Flux: a single flowing paragraph of natural language with concrete visual details.",
}

// ValidStyle reports whether s is one of the four prompt styles.
func ValidStyle(s string) bool {
	_, ok := styleInstructions[s]
	return ok
}

// ValidTarget reports whether t is a known target platform. The empty
// string is allowed since the target is optional.
func ValidTarget(t string) bool {
	if t == "" {
		return true
	}
	_, ok := targetHints[t]
	return ok
}

// systemInstruction builds the system message from the fixed lookup
// tables. Unknown styles fall back to detailed.
func systemInstruction(style, target string) string {
	instruction, ok := styleInstructions[style]
	if !ok {
		instruction = styleInstructions[StyleDetailed]
	}

	var sb strings.Builder
	sb.WriteString("You are an expert prompt engineer for AI image generation. ")
	sb.WriteString("Study the supplied stock photo and its listing metadata, then produce one prompt that would recreate a comparable image. ")
	sb.WriteString(instruction)
	if hint, ok := targetHints[target]; ok {
		sb.WriteString(" ")
		sb.WriteString(hint)
	}
	sb.WriteString(" Return only the prompt text with no preamble or commentary.")
	return sb.String()
}

// contextText renders the scraped metadata as supporting context for the
// vision model.
func contextText(req *Request) string {
	meta := req.Metadata

	var sb strings.Builder
	sb.WriteString("Stock photo listing metadata:\n")
	if meta.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", meta.Title)
	}
	if meta.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", meta.Description)
	}
	if meta.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", meta.Category)
	}
	if len(meta.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(meta.Tags, ", "))
	}
	if meta.Platform != "" {
		fmt.Fprintf(&sb, "Source platform: %s\n", meta.Platform)
	}
	sb.WriteString("Generate the image prompt now.")
	return sb.String()
}

// variationInstruction asks for stylistic alternates of a prompt already
// produced. Used by the adapters that support a follow-up call.
func variationInstruction(prompt string) string {
	return fmt.Sprintf("Here is an image-generation prompt:\n\n%s\n\nWrite exactly 2 stylistic variations of this prompt, one per line, preserving the subject but varying mood, style or framing. Return only the two lines.", prompt)
}

// listMarker matches numbered or bulleted list prefixes only; digits that
// open the variation text itself ("2 dogs running") must survive.
var listMarker = regexp.MustCompile(`^(?:\d+[.)]|[-*])\s*`)

// parseVariations splits a variations response into at most two non-empty
// lines.
func parseVariations(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == 2 {
			break
		}
	}
	return out
}
