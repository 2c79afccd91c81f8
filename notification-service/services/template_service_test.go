package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateService(t *testing.T) {
	ts, err := NewTemplateService()
	require.NoError(t, err)

	for _, name := range []string{"npd_submitted", "npd_verified", "npd_finalized", "npd_rejected", "sp2d_issued"} {
		assert.True(t, ts.Has(name), "template %s should be registered", name)
	}
	assert.False(t, ts.Has("npd_archived"))
	assert.Len(t, ts.Names(), 5)
}

func TestRenderSubmittedTemplate(t *testing.T) {
	ts, err := NewTemplateService()
	require.NoError(t, err)

	html, err := ts.Render("npd_submitted", map[string]interface{}{
		"RecipientName": "Siti Rahayu",
		"NPDNumber":     "NPD/UP/0001/2026",
		"SubmitterName": "Budi Santoso",
		"Link":          "https://sinpd.example.go.id/npd/123",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Siti Rahayu")
	assert.Contains(t, html, "NPD/UP/0001/2026")
	assert.Contains(t, html, "Budi Santoso")
	assert.Contains(t, html, `https://sinpd.example.go.id/npd/123`)
	assert.Contains(t, html, "<!DOCTYPE html>")
}

func TestRenderRejectedTemplateEscapesReason(t *testing.T) {
	ts, err := NewTemplateService()
	require.NoError(t, err)

	html, err := ts.Render("npd_rejected", map[string]interface{}{
		"RecipientName": "Budi",
		"NPDNumber":     "NPD/GU/0002/2026",
		"Reason":        "<script>alert(1)</script>",
		"Link":          "https://example.test",
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderUnknownTemplate(t *testing.T) {
	ts, err := NewTemplateService()
	require.NoError(t, err)

	_, err = ts.Render("does_not_exist", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestRenderMissingDataLeavesNoError(t *testing.T) {
	ts, err := NewTemplateService()
	require.NoError(t, err)

	// html/template renders missing map keys as empty strings.
	html, err := ts.Render("npd_finalized", map[string]interface{}{})
	require.NoError(t, err)
	assert.Contains(t, html, "NPD Final")
}
