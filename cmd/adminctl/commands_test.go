package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/model"
)

func TestParseCompanies(t *testing.T) {
	got, err := parseCompanies([]string{"acme:tplA, tplB", "globex:tplC", "initech:"})
	require.NoError(t, err)
	assert.Equal(t, []model.CompanySelection{
		{CompanyAccountID: "acme", TemplateIDs: []string{"tplA", "tplB"}},
		{CompanyAccountID: "globex", TemplateIDs: []string{"tplC"}},
		{CompanyAccountID: "initech", TemplateIDs: []string{}},
	}, got)

	_, err = parseCompanies([]string{"no-colon"})
	assert.Error(t, err)
	_, err = parseCompanies([]string{":tpl"})
	assert.Error(t, err)
}

func TestPrintNotices(t *testing.T) {
	var buf bytes.Buffer
	printNotices(&buf, []model.Notice{
		model.SuccessNotice("Successfully created 3 campaign(s)"),
		model.ErrorNotice("Failed to create 1 campaign(s)"),
	})
	assert.Equal(t, "✓ Successfully created 3 campaign(s)\n✗ Failed to create 1 campaign(s)\n", buf.String())
}

func TestExplainAuthExpired(t *testing.T) {
	var buf bytes.Buffer
	err := explain(&buf, appErrors.NewAuthExpired())
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "/auth/login")
}
