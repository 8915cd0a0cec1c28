package store

import (
	"errors"
	"strings"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/scrape/util"
)

var (
	ErrMissingFields = errors.New("Missing required fields: title, company, applyUrl")
	ErrInvalidApply  = errors.New("applyUrl must be a valid URL")
)

// ValidateJob checks what a job needs before it can be stored.
func ValidateJob(j domain.CandidateJob) error {
	if strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.Company) == "" || strings.TrimSpace(j.ApplyURL) == "" {
		return ErrMissingFields
	}
	if !util.IsValidURL(j.ApplyURL) {
		return ErrInvalidApply
	}
	return nil
}
