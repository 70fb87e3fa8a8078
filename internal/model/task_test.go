package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_UnmarshalUnknownPriority(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":"a1","title":"Ship","priority":"Urgent","isCompleted":true}`), &task)
	require.NoError(t, err)

	assert.Equal(t, "a1", task.ID)
	assert.Equal(t, Priority("Urgent"), task.Priority)
	assert.False(t, task.Priority.Valid())
	assert.True(t, task.IsCompleted)
}

func TestTask_UnmarshalMongoID(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"_id":"65f0","title":"Legacy","createdAt":"2024-03-01T10:00:00.000Z"}`), &task)
	require.NoError(t, err)

	assert.Equal(t, "65f0", task.ID)
	assert.Equal(t, 2024, task.CreatedAt.Year())
}

func TestTask_UnmarshalLenientDueDate(t *testing.T) {
	tests := []struct {
		name    string
		due     string
		wantDue string
	}{
		{name: "iso instant", due: `"2025-03-01T00:00:00.000Z"`, wantDue: "2025-03-01"},
		{name: "date only", due: `"2025-03-01"`, wantDue: "2025-03-01"},
		{name: "empty string", due: `""`},
		{name: "garbage", due: `"next tuesday"`},
		{name: "null", due: `null`},
		{name: "number", due: `20250301`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			err := json.Unmarshal([]byte(`{"id":"a","title":"T","dueDate":`+tt.due+`}`), &task)
			require.NoError(t, err)

			if tt.wantDue == "" {
				assert.Nil(t, task.DueDate)
				return
			}
			require.NotNil(t, task.DueDate)
			assert.Equal(t, tt.wantDue, DateInput(*task.DueDate))
		})
	}
}

func TestTask_OneBadDueDateKeepsList(t *testing.T) {
	var tasks []Task
	body := `[{"id":"1","title":"A","dueDate":"2025-01-02T00:00:00.000Z"},{"id":"2","title":"B","dueDate":""}]`
	require.NoError(t, json.Unmarshal([]byte(body), &tasks))

	require.Len(t, tasks, 2)
	assert.NotNil(t, tasks[0].DueDate)
	assert.Nil(t, tasks[1].DueDate)
}

func TestTaskPatch_JSON(t *testing.T) {
	title := "New"
	none := ""
	done := true

	tests := []struct {
		name  string
		patch TaskPatch
		want  string
	}{
		{name: "empty", patch: TaskPatch{}, want: `{}`},
		{name: "title only", patch: TaskPatch{Title: &title}, want: `{"title":"New"}`},
		{name: "clear due date", patch: TaskPatch{DueDate: &none}, want: `{"dueDate":null}`},
		{name: "completion", patch: TaskPatch{IsCompleted: &done}, want: `{"isCompleted":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.patch)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestTaskPatch_UnmarshalNullDueDate(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null,"priority":"High"}`), &p))

	require.NotNil(t, p.DueDate)
	assert.Equal(t, "", *p.DueDate)
	require.NotNil(t, p.Priority)
	assert.Equal(t, PriorityHigh, *p.Priority)
	assert.Nil(t, p.Title)
	assert.False(t, p.Empty())
}

func TestDateInputRoundTrip(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-11", -11*3600),
		time.FixedZone("UTC+14", 14*3600),
		time.FixedZone("UTC+5:30", 5*3600+1800),
	}
	dates := []string{"2024-01-01", "2024-02-29", "2025-12-31"}

	orig := time.Local
	defer func() { time.Local = orig }()

	for _, loc := range zones {
		time.Local = loc
		for _, d := range dates {
			iso, err := DateInputToISO(d)
			require.NoError(t, err)

			back, err := ISOToDateInput(iso)
			require.NoError(t, err)
			assert.Equal(t, d, back, "zone %s", loc)
		}
	}
}

func TestDateInputToISO(t *testing.T) {
	iso, err := DateInputToISO("2024-07-04")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-04T00:00:00.000Z", iso)

	empty, err := DateInputToISO("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DateInputToISO("07/04/2024")
	assert.Error(t, err)
}

func TestISOToDateInput_OffsetTimestamp(t *testing.T) {
	// 2024-07-04T23:30-02:00 is already July 5th in UTC.
	got, err := ISOToDateInput("2024-07-04T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-05", got)
}

func TestFormatDueDate(t *testing.T) {
	assert.Equal(t, "No due date", FormatDueDate(nil))

	d := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 9, 2024", FormatDueDate(&d))
}

func TestStatusAndPriorityValid(t *testing.T) {
	assert.True(t, StatusAll.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, Status("archived").Valid())

	for _, p := range Priorities {
		assert.True(t, p.Valid())
	}
	assert.False(t, Priority("").Valid())
}
