package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxletterhelp/notice-intelligence/internal/domain/notice"
)

func TestBuildAnalysisFilter_Empty(t *testing.T) {
	t.Parallel()

	where, args := buildAnalysisFilter(notice.ListFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildAnalysisFilter_NoticeType(t *testing.T) {
	t.Parallel()

	where, args := buildAnalysisFilter(notice.ListFilter{NoticeType: "CP2000"})
	assert.Equal(t, " WHERE notice_type = $1", where)
	assert.Equal(t, []interface{}{"CP2000"}, args)
}

func TestBuildAnalysisFilter_Combined(t *testing.T) {
	t.Parallel()

	where, args := buildAnalysisFilter(notice.ListFilter{NoticeType: "CP504", RiskLevel: "HIGH"})
	assert.Equal(t, " WHERE notice_type = $1 AND risk_level = $2", where)
	assert.Equal(t, []interface{}{"CP504", "HIGH"}, args)
}
