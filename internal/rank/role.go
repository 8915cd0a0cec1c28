package rank

import (
	"strings"

	"remotejobs-crawler/internal/domain"
)

// Checked in order; the first category with a hit wins.
var roleOrder = []struct {
	category string
	role     domain.RoleCategory
}{
	{"product", domain.RoleProduct},
	{"design", domain.RoleDesign},
	{"qa", domain.RoleQA},
	{"data", domain.RoleData},
	{"marketing", domain.RoleMarketing},
	{"sales", domain.RoleSales},
	{"support", domain.RoleSupport},
	{"frontend", domain.RoleEngineering},
	{"backend", domain.RoleEngineering},
	{"fullstack", domain.RoleEngineering},
	{"mobile", domain.RoleEngineering},
	{"devops", domain.RoleEngineering},
}

// InferRoleCategory classifies a job with the default keyword lists.
func InferRoleCategory(job domain.CandidateJob) domain.RoleCategory {
	return Default().InferRoleCategory(job)
}

func (e *Engine) InferRoleCategory(job domain.CandidateJob) domain.RoleCategory {
	parts := []string{job.Title, job.Description}
	if len(job.Tags) > 0 {
		parts = append(parts, strings.Join(job.Tags, " "))
	}
	blob := []byte(strings.ToLower(strings.Join(parts, " ")))

	for _, r := range roleOrder {
		if e.category(r.category).any(blob) {
			return r.role
		}
	}
	return domain.RoleOther
}
