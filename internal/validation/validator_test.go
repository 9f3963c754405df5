package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookkeeperapp/bookkeeper-server/internal/errors"
	"github.com/bookkeeperapp/bookkeeper-server/internal/validation"
)

type bookRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	PageN       int    `json:"page_n" validate:"gte=0"`
	PageCurrent int    `json:"page_current" validate:"gte=0,ltefield=PageN"`
	FinishDate  string `json:"finish_date,omitempty" validate:"day"`
	Slug        string `json:"slug" validate:"omitempty,slug"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()

	err := v.Validate(bookRequest{Title: "Learning Spark", PageN: 399, PageCurrent: 399, FinishDate: "2023-03-31", Slug: "jules-s-damji-learning-spark"})

	assert.NoError(t, err)
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       bookRequest
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing title",
			req:       bookRequest{PageN: 10},
			wantField: "title",
			wantMsg:   "is required",
		},
		{
			name:      "pages beyond total",
			req:       bookRequest{Title: "x", PageN: 10, PageCurrent: 11},
			wantField: "page_current",
			wantMsg:   "must not exceed PageN",
		},
		{
			name:      "negative pages",
			req:       bookRequest{Title: "x", PageN: -1},
			wantField: "page_n",
			wantMsg:   "must be greater than or equal to 0",
		},
		{
			name:      "bad day",
			req:       bookRequest{Title: "x", FinishDate: "31/03/2023"},
			wantField: "finish_date",
			wantMsg:   "must be a date formatted YYYY-MM-DD",
		},
		{
			name:      "bad slug",
			req:       bookRequest{Title: "x", Slug: "Not A Slug"},
			wantField: "slug",
			wantMsg:   "must be a lowercase slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, http.StatusBadRequest, derr.HTTPStatus())

			details, ok := derr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_NonStruct(t *testing.T) {
	v := validation.New()
	assert.Error(t, v.Validate("not a struct"))
}
