package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `{"name":"Rajma Chawal","prepTime":"40 minutes","ingredients":["1 cup rajma","2 cups rice","1 onion"],"instructions":"1. Soak rajma\n2. Pressure cook\n3. Serve with rice","mood":"happy"}`

func wellFormedDraft() Draft {
	return Draft{
		Name:         "Rajma Chawal",
		PrepTime:     "40 minutes",
		Ingredients:  []string{"1 cup rajma", "2 cups rice", "1 onion"},
		Instructions: "1. Soak rajma\n2. Pressure cook\n3. Serve with rice",
		Mood:         "happy",
	}
}

func requireFormatError(t *testing.T, err error) *FormatError {
	t.Helper()
	require.Error(t, err)
	var ferr *FormatError
	require.True(t, errors.As(err, &ferr), "expected *FormatError, got %T", err)
	return ferr
}

func TestNormalizePassThrough(t *testing.T) {
	d, err := Normalize(wellFormed)
	require.NoError(t, err)
	assert.Equal(t, wellFormedDraft(), d)
}

func TestNormalizeWrappers(t *testing.T) {
	cases := map[string]string{
		"json prefix":            "JSON" + wellFormed,
		"lowercase prefix":       "json " + wellFormed,
		"fenced with tag":        "```json\n" + wellFormed + "\n```",
		"fenced without tag":     "```\n" + wellFormed + "\n```",
		"surrounding space":      "\n\n  " + wellFormed + "  \n",
		"prefix and fence":       "JSON\n```json\n" + wellFormed + "\n```",
		"prose around object":    "Here is your recipe:\n" + wellFormed + "\nEnjoy!",
		"fence followed by note": "```json\n" + wellFormed + "\n```\nLet me know if you want changes.",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := Normalize(input)
			require.NoError(t, err)
			assert.Equal(t, wellFormedDraft(), d)
		})
	}
}

func TestNormalizeRepairsMissingCommas(t *testing.T) {
	t.Run("after closing quote", func(t *testing.T) {
		input := "{\n\"name\": \"Rajma Chawal\"\n\"prepTime\": \"40 minutes\",\n\"ingredients\": [\"1 cup rajma\", \"2 cups rice\", \"1 onion\"],\n\"instructions\": \"1. Soak rajma\\n2. Pressure cook\\n3. Serve with rice\"\n\"mood\": \"happy\"\n}"
		d, err := Normalize(input)
		require.NoError(t, err)
		assert.Equal(t, wellFormedDraft(), d)
	})

	t.Run("after ingredients array", func(t *testing.T) {
		input := "{\"name\": \"Rajma Chawal\", \"prepTime\": \"40 minutes\",\n\"ingredients\": [\"1 cup rajma\", \"2 cups rice\", \"1 onion\"]\n\"instructions\": \"1. Soak rajma\\n2. Pressure cook\\n3. Serve with rice\",\n\"mood\": \"happy\"}"
		d, err := Normalize(input)
		require.NoError(t, err)
		assert.Equal(t, wellFormedDraft(), d)
	})

	t.Run("pretty printed", func(t *testing.T) {
		input := "{\n  \"name\": \"Rajma Chawal\"\n  \"prepTime\": \"40 minutes\"\n  \"ingredients\": [\n    \"1 cup rajma\"\n    \"2 cups rice\"\n    \"1 onion\"\n  ]\n  \"instructions\": \"1. Soak rajma\\n2. Pressure cook\\n3. Serve with rice\"\n  \"mood\": \"happy\"\n}"
		d, err := Normalize(input)
		require.NoError(t, err)
		assert.Equal(t, wellFormedDraft(), d)
	})
}

func TestNormalizeRemovesTrailingComma(t *testing.T) {
	input := "{\"name\": \"Rajma Chawal\", \"prepTime\": \"40 minutes\", \"ingredients\": [\"1 cup rajma\", \"2 cups rice\", \"1 onion\",], \"instructions\": \"1. Soak rajma\\n2. Pressure cook\\n3. Serve with rice\",\n\"mood\": \"happy\",\n}"
	d, err := Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, wellFormedDraft(), d)

	d, err = Normalize(`{"name":"X","prepTime":"5 minutes","ingredients":[],"instructions":"1. Eat","mood":"happy",}`)
	require.NoError(t, err)
	assert.Equal(t, "happy", d.Mood)
}

func TestNormalizeNumericPrepTime(t *testing.T) {
	d, err := Normalize(`{"name":"Poha","prepTime":30,"ingredients":["poha"],"instructions":"1. Rinse","mood":"tired"}`)
	require.NoError(t, err)
	assert.Equal(t, "30 minutes", d.PrepTime)

	d, err = Normalize(`{"name":"Poha","prepTime":12.5,"ingredients":["poha"],"instructions":"1. Rinse","mood":"tired"}`)
	require.NoError(t, err)
	assert.Equal(t, "12.5 minutes", d.PrepTime)
}

func TestNormalizeMissingFields(t *testing.T) {
	ferr := requireFormatError(t, func() error {
		_, err := Normalize(`{"name":"Poha","prepTime":"10 minutes","instructions":"1. Rinse","mood":"tired"}`)
		return err
	}())
	assert.Equal(t, []string{"ingredients"}, ferr.Missing)
	assert.Contains(t, ferr.Error(), "ingredients")

	ferr = requireFormatError(t, func() error {
		_, err := Normalize(`{"name":"Poha"}`)
		return err
	}())
	assert.Equal(t, []string{"prepTime", "ingredients", "instructions", "mood"}, ferr.Missing)
}

func TestNormalizeEmptyIngredients(t *testing.T) {
	d, err := Normalize(`{"name":"Water","prepTime":"1 minutes","ingredients":null,"instructions":"1. Pour","mood":"calm"}`)
	require.NoError(t, err)
	assert.NotNil(t, d.Ingredients)
	assert.Empty(t, d.Ingredients)
}

func TestNormalizeEmptyName(t *testing.T) {
	ferr := requireFormatError(t, func() error {
		_, err := Normalize(`{"name":"  ","prepTime":"1 minutes","ingredients":[],"instructions":"1. Pour","mood":"calm"}`)
		return err
	}())
	assert.Equal(t, []string{"name"}, ferr.Missing)
}

func TestNormalizeUnparseable(t *testing.T) {
	for name, input := range map[string]string{
		"empty":      "",
		"whitespace": "   \n ",
		"prose":      "Sorry, I cannot help with that.",
		"array":      `["name", "prepTime"]`,
		"null":       "null",
		"broken":     `{"name": "X", "prepTime": }`,
		"fence only": "```json\n```",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(input)
			ferr := requireFormatError(t, err)
			assert.Empty(t, ferr.Missing)
			assert.Error(t, ferr.Err)
		})
	}
}

func TestNormalizeWrongFieldType(t *testing.T) {
	_, err := Normalize(`{"name":"Poha","prepTime":"10 minutes","ingredients":"poha, salt","instructions":"1. Rinse","mood":"tired"}`)
	ferr := requireFormatError(t, err)
	assert.Error(t, ferr.Err)
	assert.Contains(t, ferr.Text, "poha, salt")
}

func TestNormalizeKeepsIngredientOrder(t *testing.T) {
	d, err := Normalize(`{"name":"Chai","prepTime":"5 minutes","ingredients":["water","tea","milk","sugar","ginger"],"instructions":"1. Boil","mood":"sad"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"water", "tea", "milk", "sugar", "ginger"}, d.Ingredients)
}

func TestNormalizeProseWithBraces(t *testing.T) {
	for name, input := range map[string]string{
		"leading":  "Sure {see below}: " + wellFormed + " done",
		"trailing": wellFormed + "\nServe hot {optional: ghee}",
		"both":     "Here {1}:\n" + wellFormed + "\n{enjoy}",
	} {
		t.Run(name, func(t *testing.T) {
			d, err := Normalize(input)
			require.NoError(t, err)
			assert.Equal(t, wellFormedDraft(), d)
		})
	}
}

func TestNormalizeDuplicateKeysLastWins(t *testing.T) {
	d, err := Normalize(`{"name":"Poha","prepTime":30,"ingredients":["poha"],"instructions":"1. Rinse","mood":"tired","prepTime":45}`)
	require.NoError(t, err)
	assert.Equal(t, "45 minutes", d.PrepTime)

	d, err = Normalize(`{"name":"Poha","prepTime":"ten minutes","ingredients":["poha"],"instructions":"1. Rinse","mood":"tired","prepTime":12}`)
	require.NoError(t, err)
	assert.Equal(t, "12 minutes", d.PrepTime)
}

func TestNormalizeKeepsSpecialCharacters(t *testing.T) {
	d, err := Normalize(`{"name":"Dal & Rice <Tadka>","prepTime":"20 minutes","ingredients":["salt & pepper"],"instructions":"1. Cook","mood":"calm"}`)
	require.NoError(t, err)
	assert.Equal(t, "Dal & Rice <Tadka>", d.Name)
	assert.Equal(t, []string{"salt & pepper"}, d.Ingredients)
}
