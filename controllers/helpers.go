package controllers

import (
	"math"
	"strings"

	"github.com/cncdesign/cncbackend/config"
	"github.com/cncdesign/cncbackend/repository"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
)

// requiredField pairs a JSON field name with the value received for it.
type requiredField struct {
	name  string
	value string
}

// firstMissing returns the name of the first field whose value is blank.
func firstMissing(fields ...requiredField) string {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// nonBlank drops empty entries and never returns nil.
func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// listOptions reads page and limit. Without either parameter the whole
// collection is returned, which keeps older clients working.
func listOptions(c *gin.Context, q config.QueryConfig) repository.ListOptions {
	if c.Query("page") == "" && c.Query("limit") == "" {
		return repository.ListOptions{}
	}
	page := utils.ParseIntDefault(c.Query("page"), 1)
	limit := utils.ParseIntDefault(c.Query("limit"), q.DefaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = q.DefaultLimit
	}
	if limit > q.MaxLimit {
		limit = q.MaxLimit
	}
	// a page past int64 range can only be empty
	skip := int64(math.MaxInt64)
	if int64(page-1) <= math.MaxInt64/int64(limit) {
		skip = int64(page-1) * int64(limit)
	}
	return repository.ListOptions{
		Skip:  skip,
		Limit: int64(limit),
	}
}

// recordID takes the id from the path, falling back to ?id=.
func recordID(c *gin.Context) string {
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("id"))
}
