package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_profilesAndRecipe(t *testing.T) {
	doc := []byte(`
profiles:
  default:
    user_id: "1"
    group_id: "3"
recipes:
  get_user:
    method: GET
    url: "https://example.com/users/{{user_id}}"
    headers:
      Accept: application/json
`)
	col, err := Parse(doc)
	require.NoError(t, err)
	require.Contains(t, col.Profiles, "default")
	assert.Equal(t, "default", col.Profiles["default"].ID.String())
	require.Contains(t, col.Recipes, "get_user")
	assert.Equal(t, "GET", col.Recipes["get_user"].Method.String())
}

func TestParse_commandChain(t *testing.T) {
	doc := []byte(`
chains:
  chain1:
    command: ["echo", "-n", "hello"]
    trim: both
`)
	col, err := Parse(doc)
	require.NoError(t, err)
	chain := col.Chains["chain1"]
	require.NotNil(t, chain)
	assert.Equal(t, SourceCommand, chain.Source.Kind)
	assert.Equal(t, TrimBoth, chain.Trim)
	assert.Len(t, chain.Source.Command.Command, 3)
}

func TestParse_commandChainScalarForm(t *testing.T) {
	doc := []byte(`
chains:
  chain1:
    command: "echo -n hello"
`)
	col, err := Parse(doc)
	require.NoError(t, err)
	assert.Len(t, col.Chains["chain1"].Source.Command.Command, 3)
}

func TestParse_requestChainWithTrigger(t *testing.T) {
	doc := []byte(`
chains:
  latest:
    request:
      recipe: get_user
      trigger: expire
      expire_after: 5m
      section: "header:Content-Type"
`)
	col, err := Parse(doc)
	require.NoError(t, err)
	chain := col.Chains["latest"]
	require.NotNil(t, chain)
	assert.Equal(t, SourceRequest, chain.Source.Kind)
	assert.Equal(t, TriggerExpire, chain.Source.Request.Trigger.Kind)
	assert.Equal(t, SectionHeader, chain.Source.Request.Section.Kind)
	assert.Equal(t, "Content-Type", chain.Source.Request.Section.Header)
}

func TestParse_chainMissingSource(t *testing.T) {
	doc := []byte(`
chains:
  broken:
    trim: both
`)
	_, err := Parse(doc)
	require.Error(t, err)
}

func TestParse_chainAmbiguousSource(t *testing.T) {
	doc := []byte(`
chains:
  broken:
    command: "echo hi"
    file: "a.txt"
`)
	_, err := Parse(doc)
	require.Error(t, err)
}

func TestParse_aggregatesMultipleErrors(t *testing.T) {
	doc := []byte(`
chains:
  bad_one:
    trim: both
  bad_two:
    file: "a.txt"
    command: "echo hi"
`)
	_, err := Parse(doc)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "bad_one")
	assert.Contains(t, msg, "bad_two")
}
