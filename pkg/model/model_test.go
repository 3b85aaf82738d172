package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationCodeRetirementLetters(t *testing.T) {
	for _, code := range []ClassificationCode{CodeRetired, CodeDisqualified, CodeExcluded, CodeWithdrawn, CodeNotClassified} {
		assert.True(t, code.IsRetirement(), "code %s", code)
		assert.Equal(t, 0, code.Position())
	}
	assert.False(t, ClassificationCode("3").IsRetirement())
	assert.Equal(t, 3, ClassificationCode("3").Position())
}

func TestClassificationCodeAcceptsBothEncodings(t *testing.T) {
	var fromNumber, fromString ClassificationCode
	require.NoError(t, json.Unmarshal([]byte(`7`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"7"`), &fromString))
	assert.Equal(t, fromString, fromNumber)

	var retired ClassificationCode
	require.NoError(t, json.Unmarshal([]byte(`"R"`), &retired))
	assert.True(t, retired.IsRetirement())

	var bad ClassificationCode
	assert.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "DNF", Classification{Kind: Retired}.String())
	assert.Equal(t, "Finished", Classification{Kind: FinishedLeadLap}.String())
	assert.Equal(t, "+2 lap(s)", Classification{Kind: FinishedLapped, LapDeficit: 2}.String())
	assert.Equal(t, "Racing", Classification{}.String())
}

func TestDiscrepancyString(t *testing.T) {
	d := Discrepancy{Driver: "HAM", TelemetryPosition: 2, VerifiedPosition: 3}
	assert.Equal(t, "HAM: P2 -> P3 (corrected)", d.String())
}
