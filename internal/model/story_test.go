package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() StoryRequest {
	return StoryRequest{
		Characters: []Character{
			{ID: "c1", Name: "Mila", IsMainCharacter: true, Gender: GenderFemale},
		},
		AgeRange:               "4-6",
		StoryPlotOption:        PlotFromDescription,
		StoryDescription:       "a fox learns to share",
		StoryLengthTargetPages: 3,
	}
}

func TestStoryRequest_Normalize(t *testing.T) {
	req := validRequest()
	req.StoryLengthTargetPages = 0
	req.Characters[0].Gender = ""

	req.Normalize()
	assert.Equal(t, DefaultStoryPages, req.StoryLengthTargetPages)
	assert.Equal(t, GenderUnspecified, req.Characters[0].Gender)
}

func TestStoryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StoryRequest)
		wantErr bool
	}{
		{name: "valid describe mode", mutate: func(r *StoryRequest) {}},
		{
			name:    "no characters",
			mutate:  func(r *StoryRequest) { r.Characters = nil },
			wantErr: true,
		},
		{
			name:    "unnamed character",
			mutate:  func(r *StoryRequest) { r.Characters[0].Name = "  " },
			wantErr: true,
		},
		{
			name:    "unknown gender",
			mutate:  func(r *StoryRequest) { r.Characters[0].Gender = "robot" },
			wantErr: true,
		},
		{
			name:    "http photo url",
			mutate:  func(r *StoryRequest) { r.Characters[0].UploadedPhotoURL = "http://example.com/a.png" },
			wantErr: true,
		},
		{
			name:   "https photo url",
			mutate: func(r *StoryRequest) { r.Characters[0].UploadedPhotoURL = "https://example.com/a.png" },
		},
		{
			name:    "missing age range",
			mutate:  func(r *StoryRequest) { r.AgeRange = "" },
			wantErr: true,
		},
		{
			name:    "describe mode without description",
			mutate:  func(r *StoryRequest) { r.StoryDescription = "" },
			wantErr: true,
		},
		{
			name: "photos mode without photos",
			mutate: func(r *StoryRequest) {
				r.StoryPlotOption = PlotFromPhotos
				r.UploadedStoryPhotoURLs = nil
			},
			wantErr: true,
		},
		{
			name: "photos mode with photos",
			mutate: func(r *StoryRequest) {
				r.StoryPlotOption = PlotFromPhotos
				r.UploadedStoryPhotoURLs = []string{"https://example.com/p.jpg"}
			},
		},
		{
			name: "starter mode needs nothing extra",
			mutate: func(r *StoryRequest) {
				r.StoryPlotOption = PlotFromStarter
				r.StoryDescription = ""
			},
		},
		{
			name:    "unknown plot option",
			mutate:  func(r *StoryRequest) { r.StoryPlotOption = "dream" },
			wantErr: true,
		},
		{
			name:    "too few pages",
			mutate:  func(r *StoryRequest) { r.StoryLengthTargetPages = 2 },
			wantErr: true,
		},
		{
			name:    "too many pages",
			mutate:  func(r *StoryRequest) { r.StoryLengthTargetPages = 11 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStoryRequest_MainCharacter(t *testing.T) {
	req := StoryRequest{
		Characters: []Character{
			{Name: "Tom"},
			{Name: "Mila", IsMainCharacter: true},
		},
	}
	assert.Equal(t, "Mila", req.MainCharacter().Name)

	req.Characters[1].IsMainCharacter = false
	assert.Equal(t, "Tom", req.MainCharacter().Name, "falls back to the first character")
}

func TestStoryPage_ImageURLSerializesAsNull(t *testing.T) {
	page := StoryPage{Text: "A page without a picture."}
	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"A page without a picture.","imageUrl":null}`, string(raw))
}
