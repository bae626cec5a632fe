package service

import (
	"fmt"
	"strings"
	"unicode"

	"storybook-server/internal/model"
)

// softenShouting lowercases words written in ALL CAPS so the models do not
// interpret user input as emphatic instructions. Single-letter words like
// "I" and "A" are left alone.
func softenShouting(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		letters := 0
		uppers := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					uppers++
				}
			}
		}
		if letters > 1 && uppers == letters {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func genderPhrase(g model.Gender) string {
	switch g {
	case model.GenderFemale:
		return "a girl"
	case model.GenderMale:
		return "a boy"
	default:
		return "a child"
	}
}

func describeCharacters(chars []model.Character) string {
	var b strings.Builder
	for i, ch := range chars {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s, %s", ch.Name, genderPhrase(ch.Gender))
		if ch.IsMainCharacter {
			b.WriteString(" (the main character)")
		}
	}
	return b.String()
}

// BuildStorySystemPrompt instructs the text model to return strict JSON.
func BuildStorySystemPrompt(pageCount int) string {
	return fmt.Sprintf(`You are a children's story writer. You write warm, age-appropriate illustrated storybooks.
Respond with ONLY a JSON array of exactly %d strings, one per page, in reading order.
Each string is the full text of one page: two to four short sentences.
Do not include page numbers, titles, markdown, or any text outside the JSON array.`, pageCount)
}

// BuildStoryUserPrompt assembles the page-writing request from the story
// request. User-supplied free text is softened before inclusion.
func BuildStoryUserPrompt(req model.StoryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %d-page story for children aged %s.\n", req.StoryLengthTargetPages, req.AgeRange)
	fmt.Fprintf(&b, "Characters: %s.\n", describeCharacters(req.Characters))
	switch req.StoryPlotOption {
	case model.PlotFromDescription:
		fmt.Fprintf(&b, "Plot: %s\n", softenShouting(req.StoryDescription))
	case model.PlotFromPhotos:
		fmt.Fprintf(&b, "Base the plot on the %d attached photos: describe the real moment they capture and build the story around it.\n", len(req.UploadedStoryPhotoURLs))
	case model.PlotFromStarter:
		b.WriteString("Invent a gentle, imaginative plot with a small challenge the main character overcomes.\n")
	}
	if req.StoryStyle != "" {
		fmt.Fprintf(&b, "Tone and style: %s.\n", softenShouting(req.StoryStyle))
	}
	fmt.Fprintf(&b, "The main character is %s. Refer to %s by name.\n", req.MainCharacter().Name, req.MainCharacter().Name)
	b.WriteString("End on a comforting note suitable for bedtime reading.")
	return b.String()
}

// noTextDirectives are layered because image models routinely ignore a
// single instruction not to render text.
const noTextDirectives = "The image must contain absolutely no text, no letters, no words, no captions, no speech bubbles, no signs with writing, and no numbers. Purely visual storytelling only."

// BuildPagePrompt builds the illustration prompt for a single page.
func BuildPagePrompt(pageText, style, ageRange string, chars []model.Character) string {
	var b strings.Builder
	b.WriteString("A children's storybook illustration")
	if style != "" {
		fmt.Fprintf(&b, " in a %s style", softenShouting(style))
	}
	fmt.Fprintf(&b, ", suitable for readers aged %s.\n", ageRange)
	fmt.Fprintf(&b, "Scene: %s\n", softenShouting(pageText))
	fmt.Fprintf(&b, "Characters to depict consistently: %s.\n", describeCharacters(chars))
	b.WriteString("Bright, warm, friendly. ")
	b.WriteString(noTextDirectives)
	b.WriteString(" Do not write the story text into the picture.")
	return b.String()
}
