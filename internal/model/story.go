package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest marks story request validation failures.
var ErrInvalidRequest = errors.New("invalid story request")

// Gender of a story character.
type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderUnspecified Gender = "unspecified"
)

// PlotSource selects where the story plot comes from.
type PlotSource string

const (
	PlotFromPhotos      PlotSource = "photos"
	PlotFromDescription PlotSource = "describe"
	PlotFromStarter     PlotSource = "starter"
)

const (
	MinStoryPages     = 3
	MaxStoryPages     = 10
	DefaultStoryPages = 6
)

// Character is immutable for the duration of one generation run.
type Character struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	IsMainCharacter  bool   `json:"isMainCharacter"`
	Gender           Gender `json:"gender"`
	UploadedPhotoURL string `json:"uploadedPhotoUrl,omitempty"`
}

// StoryRequest is the inbound generation request body.
type StoryRequest struct {
	Characters             []Character `json:"characters"`
	AgeRange               string      `json:"ageRange"`
	StoryPlotOption        PlotSource  `json:"storyPlotOption"`
	StoryDescription       string      `json:"storyDescription,omitempty"`
	StoryStyle             string      `json:"storyStyle,omitempty"`
	StoryLengthTargetPages int         `json:"storyLengthTargetPages,omitempty"`
	Email                  string      `json:"email,omitempty"`
	UploadedStoryPhotoURLs []string    `json:"uploadedStoryPhotoUrls,omitempty"`
}

// Normalize fills in defaults the client is allowed to omit.
func (r *StoryRequest) Normalize() {
	if r.StoryLengthTargetPages == 0 {
		r.StoryLengthTargetPages = DefaultStoryPages
	}
	for i := range r.Characters {
		if r.Characters[i].Gender == "" {
			r.Characters[i].Gender = GenderUnspecified
		}
	}
}

// Validate checks the request invariants. Call Normalize first.
func (r *StoryRequest) Validate() error {
	if len(r.Characters) == 0 {
		return fmt.Errorf("%w: at least one character is required", ErrInvalidRequest)
	}
	for i, ch := range r.Characters {
		if strings.TrimSpace(ch.Name) == "" {
			return fmt.Errorf("%w: character %d has no name", ErrInvalidRequest, i)
		}
		switch ch.Gender {
		case GenderFemale, GenderMale, GenderUnspecified:
		default:
			return fmt.Errorf("%w: character %q has unknown gender %q", ErrInvalidRequest, ch.Name, ch.Gender)
		}
		if ch.UploadedPhotoURL != "" && !strings.HasPrefix(ch.UploadedPhotoURL, "https://") {
			return fmt.Errorf("%w: character %q photo URL must be https", ErrInvalidRequest, ch.Name)
		}
	}
	if strings.TrimSpace(r.AgeRange) == "" {
		return fmt.Errorf("%w: ageRange is required", ErrInvalidRequest)
	}
	switch r.StoryPlotOption {
	case PlotFromDescription:
		if strings.TrimSpace(r.StoryDescription) == "" {
			return fmt.Errorf("%w: storyDescription is required when storyPlotOption is %q", ErrInvalidRequest, PlotFromDescription)
		}
	case PlotFromPhotos:
		if len(r.UploadedStoryPhotoURLs) == 0 {
			return fmt.Errorf("%w: at least one photo URL is required when storyPlotOption is %q", ErrInvalidRequest, PlotFromPhotos)
		}
	case PlotFromStarter:
	default:
		return fmt.Errorf("%w: unknown storyPlotOption %q", ErrInvalidRequest, r.StoryPlotOption)
	}
	if r.StoryLengthTargetPages < MinStoryPages || r.StoryLengthTargetPages > MaxStoryPages {
		return fmt.Errorf("%w: storyLengthTargetPages must be between %d and %d", ErrInvalidRequest, MinStoryPages, MaxStoryPages)
	}
	return nil
}

// MainCharacter returns the flagged main character, falling back to the first one.
func (r *StoryRequest) MainCharacter() Character {
	for _, ch := range r.Characters {
		if ch.IsMainCharacter {
			return ch
		}
	}
	return r.Characters[0]
}

// StoryPage is one unit of story content: a paragraph plus an optional illustration.
// ImageURL is nil only when illustration generation for the page permanently failed.
type StoryPage struct {
	Text     string  `json:"text"`
	ImageURL *string `json:"imageUrl"`
}

// StoryDocument is the persisted, fully-assembled story record.
type StoryDocument struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Subtitle   string      `json:"subtitle"`
	CreatedAt  time.Time   `json:"createdAt"`
	Pages      []StoryPage `json:"pages"`
	Characters []Character `json:"characters"`
}
