package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vgreport/internal/report"
)

func TestDecodeStudent(t *testing.T) {
	st, err := DecodeStudent([]byte(`{
		"id": "s1",
		"firstName": "Robert",
		"lastName": "Lee",
		"preferredName": "Bobby",
		"pronouns": {"subject": "he", "object": "him", "possessive": "his"},
		"needs": ["ELL"]
	}`))
	require.NoError(t, err)

	bobby := "Bobby"
	assert.Equal(t, report.Student{
		ID:            "s1",
		FirstName:     "Robert",
		LastName:      "Lee",
		PreferredName: &bobby,
		Pronouns:      report.Pronouns{Subject: "he", Object: "him", Possessive: "his"},
		Needs:         []string{"ELL"},
	}, st)
}

func TestDecodeStudent_OptionalFieldsAbsent(t *testing.T) {
	st, err := DecodeStudent([]byte(`{"id": "s1", "firstName": "A", "lastName": "B"}`))
	require.NoError(t, err)
	assert.Nil(t, st.PreferredName)
	assert.Equal(t, report.Pronouns{}, st.Pronouns)
	assert.Equal(t, []string{}, st.Needs)
}

func TestDecodeStudent_NullPreferredName(t *testing.T) {
	st, err := DecodeStudent([]byte(`{"id": "s1", "firstName": "A", "lastName": "B", "preferredName": null}`))
	require.NoError(t, err)
	assert.Nil(t, st.PreferredName)
}

func TestDecodeStudent_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"empty id", `{"id": "", "firstName": "A", "lastName": "B"}`, "id"},
		{"missing last name", `{"id": "s1", "firstName": "A"}`, "lastName"},
		{"wrong type", `{"id": "s1", "firstName": 3, "lastName": "B"}`, "firstName"},
		{"needs not strings", `{"id": "s1", "firstName": "A", "lastName": "B", "needs": [1]}`, "needs.0"},
		{"unknown field", `{"id": "s1", "firstName": "A", "lastName": "B", "grade": "K"}`, "grade"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStudent([]byte(tt.input))
			require.Error(t, err)

			var cerr *Error
			require.True(t, errors.As(err, &cerr), "want *contract.Error, got %T", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestDecodeStudent_MalformedJSON(t *testing.T) {
	for _, input := range []string{"", "   ", `{"id": `} {
		_, err := DecodeStudent([]byte(input))
		require.Error(t, err, "input %q", input)

		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "json", cerr.Field)
	}
}

func TestDecodeDraft(t *testing.T) {
	d, err := DecodeDraft([]byte(`{
		"studentId": "S1",
		"reportPeriodId": "initial",
		"frame": "kindergarten",
		"section": "key_learning",
		"templateId": "t1",
		"slotValues": {"strength": "counting", "nested": {"a": "b"}},
		"renderedText": "Sam counts to 20.",
		"author": "ece",
		"status": "draft"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "S1:initial:kindergarten:key_learning", d.Key().ID())
	assert.Equal(t, "t1", *d.TemplateID)
	assert.Equal(t, "counting", d.SlotValues["strength"])
	assert.Equal(t, map[string]any{"a": "b"}, d.SlotValues["nested"])
	assert.Equal(t, "ece", d.AuthorOrDefault())
	assert.Equal(t, "draft", d.StatusOrDefault())
}

func TestDecodeDraft_Defaults(t *testing.T) {
	d, err := DecodeDraft([]byte(`{"studentId": "S1", "reportPeriodId": "p", "frame": "f", "section": "s"}`))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{}, d.SlotValues)
	assert.Nil(t, d.Author)
	assert.Nil(t, d.Status)
	assert.Equal(t, report.DefaultAuthor, d.AuthorOrDefault())
	assert.Equal(t, report.DefaultStatus, d.StatusOrDefault())
}

func TestDecodeDraft_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"delimiter in key", `{"studentId": "S:1", "reportPeriodId": "p", "frame": "f", "section": "s"}`, "studentId"},
		{"empty section", `{"studentId": "S1", "reportPeriodId": "p", "frame": "f", "section": ""}`, "section"},
		{"missing frame", `{"studentId": "S1", "reportPeriodId": "p", "section": "s"}`, "frame"},
		{"unknown author", `{"studentId": "S1", "reportPeriodId": "p", "frame": "f", "section": "s", "author": "parent"}`, "author"},
		{"unknown status", `{"studentId": "S1", "reportPeriodId": "p", "frame": "f", "section": "s", "status": "final"}`, "status"},
		{"slot values not object", `{"studentId": "S1", "reportPeriodId": "p", "frame": "f", "section": "s", "slotValues": []}`, "slotValues"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDraft([]byte(tt.input))
			require.Error(t, err)

			var cerr *Error
			require.True(t, errors.As(err, &cerr), "want *contract.Error, got %T", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestDecodeEvidence(t *testing.T) {
	e, err := DecodeEvidence([]byte(`{"studentId": "S1", "text": "Shared the blocks."}`))
	require.NoError(t, err)
	assert.Equal(t, Evidence{StudentID: "S1", Text: "Shared the blocks.", Tags: []string{}}, e)

	_, err = DecodeEvidence([]byte(`{"studentId": "S1", "text": ""}`))
	assert.Error(t, err)
}

func TestErrorPosition(t *testing.T) {
	_, err := DecodeStudent([]byte("{\n  \"id\": \"s1\",\n  \"firstName\": 3,\n  \"lastName\": \"B\"\n}"))
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.True(t, cerr.Pos.IsValid())
	assert.Contains(t, err.Error(), "firstName")
}

func TestErrorString(t *testing.T) {
	e := &Error{Field: "id", Message: "invalid value"}
	assert.Equal(t, "id: invalid value", e.Error())
}
