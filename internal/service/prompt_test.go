package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"storybook-server/internal/model"
)

func TestSoftenShouting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the fox RUNS very FAST", "the fox runs very fast"},
		{"I have A dream", "I have A dream"},
		{"ALL CAPS EVERYWHERE", "all caps everywhere"},
		{"MiXeD Case", "MiXeD Case"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, softenShouting(tt.in))
	}
}

func TestBuildStoryUserPrompt(t *testing.T) {
	req := model.StoryRequest{
		Characters: []model.Character{
			{Name: "Mila", IsMainCharacter: true, Gender: model.GenderFemale},
			{Name: "Tom", Gender: model.GenderMale},
		},
		AgeRange:               "4-6",
		StoryPlotOption:        model.PlotFromDescription,
		StoryDescription:       "a fox LEARNS to share",
		StoryStyle:             "watercolor",
		StoryLengthTargetPages: 3,
	}

	prompt := BuildStoryUserPrompt(req)
	assert.Contains(t, prompt, "3-page story")
	assert.Contains(t, prompt, "aged 4-6")
	assert.Contains(t, prompt, "Mila, a girl (the main character)")
	assert.Contains(t, prompt, "Tom, a boy")
	assert.Contains(t, prompt, "a fox learns to share", "shouted input should be lowercased")
	assert.Contains(t, prompt, "watercolor")
}

func TestBuildStoryUserPrompt_PhotoMode(t *testing.T) {
	req := model.StoryRequest{
		Characters:      []model.Character{{Name: "Ana", Gender: model.GenderUnspecified}},
		AgeRange:        "2-4",
		StoryPlotOption: model.PlotFromPhotos,
		UploadedStoryPhotoURLs: []string{
			"https://cdn.example.com/photos/a.png",
			"https://cdn.example.com/photos/b.png",
		},
		StoryLengthTargetPages: 4,
	}
	prompt := BuildStoryUserPrompt(req)
	assert.Contains(t, prompt, "2 attached photos")
	assert.Contains(t, prompt, "real moment")
	assert.Contains(t, prompt, "Ana, a child")

	starter := req
	starter.StoryPlotOption = model.PlotFromStarter
	starter.UploadedStoryPhotoURLs = nil
	assert.NotEqual(t, BuildStoryUserPrompt(starter), prompt,
		"photo mode must steer the model toward the attached photos")
}

func TestBuildPagePrompt_NoTextDirectives(t *testing.T) {
	chars := []model.Character{{Name: "Mila", Gender: model.GenderFemale}}
	prompt := BuildPagePrompt("Mila found a SHINY stone.", "watercolor", "4-6", chars)

	lower := strings.ToLower(prompt)
	assert.Contains(t, lower, "no text")
	assert.Contains(t, lower, "no letters")
	assert.Contains(t, lower, "no speech bubbles")
	assert.Contains(t, prompt, "Mila found a shiny stone.", "shouted words should be lowercased")
	assert.Contains(t, prompt, "watercolor")
	assert.Contains(t, prompt, "aged 4-6")
}

func TestBuildStorySystemPrompt_RequestsExactPageCount(t *testing.T) {
	prompt := BuildStorySystemPrompt(7)
	assert.Contains(t, prompt, "exactly 7 strings")
	assert.Contains(t, prompt, "JSON array")
}
