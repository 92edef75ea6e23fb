package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlannedSchedulesKeepsOwnTimesAndDeduplicates(t *testing.T) {
	body := `<html><body>
	<table>
		<tr><td colspan="4">Mina tider: 10:00-11:00, 13:00-14:00</td></tr>
	</table>
	<table>
		<tr><th>Typ</th><th>Datum</th><th>Tid</th><th>Kurs</th></tr>
		<tr>
			<td>Handledning</td>
			<td>2026-03-02</td>
			<td>10:00 - 11:00</td>
			<td>[ IS115G ] <a href="/servlet/GetListServlet?listid=42">Lista</a></td>
		</tr>
		<tr>
			<td>Handledning</td>
			<td>2026-03-02</td>
			<td>10:00 - 11:00</td>
			<td>[ IS115G ] <a href="/servlet/GetListServlet?listid=42">Lista</a></td>
		</tr>
		<tr>
			<td>Handledning</td>
			<td>2026-03-02</td>
			<td>12:00 - 13:00</td>
			<td>[ ANNAN1 ] <a href="/servlet/GetListServlet?listid=77">Lista</a></td>
		</tr>
	</table>
	</body></html>`

	entries, err := PlannedSchedules(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	assert.Equal(t, day.Add(10*time.Hour), entries[0].Start)
	assert.Equal(t, day.Add(11*time.Hour), entries[0].End)
	assert.Equal(t, "IS115G", entries[0].Label)
	assert.Equal(t, "42", entries[0].ListID)
}

func TestPlannedSchedulesWithoutOwnTimesKeepsEverything(t *testing.T) {
	body := `<html><body>
	<table>
		<tr><th>Typ</th><th>Datum</th><th>Tid</th><th>Kurs</th></tr>
		<tr>
			<td>Handledning</td>
			<td>2026-03-02</td>
			<td>10:00 - 11:00</td>
			<td>[ IS115G ]</td>
		</tr>
		<tr>
			<td>Handledning</td>
			<td>2026-03-03</td>
			<td>09:15 - 10:45</td>
			<td>[ IS120G ], [ IS121G ]</td>
		</tr>
	</table>
	</body></html>`

	entries, err := PlannedSchedules(body)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "IS115G", entries[0].Label)
	assert.Equal(t, "IS120G, IS121G", entries[1].Label)

	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.Local)
	assert.Equal(t, day.Add(9*time.Hour+15*time.Minute), entries[1].Start)
	assert.Equal(t, day.Add(10*time.Hour+45*time.Minute), entries[1].End)
}

func TestPlannedSchedulesSkipsMalformedRows(t *testing.T) {
	body := `<html><body>
	<table>
		<tr><th>Typ</th><th>Datum</th><th>Tid</th><th>Kurs</th></tr>
		<tr><td>För kort rad</td></tr>
		<tr><td>Handledning</td><td>inte ett datum</td><td>10:00 - 11:00</td><td>[ A ]</td></tr>
		<tr><td>Handledning</td><td>2026-03-02</td><td>ingen tid</td><td>[ A ]</td></tr>
	</table>
	</body></html>`

	entries, err := PlannedSchedules(body)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPlannedSchedulesFallsBackToListTypeLabel(t *testing.T) {
	body := `<html><body>
	<table>
		<tr><th>Typ</th><th>Datum</th><th>Tid</th><th>Kurs</th></tr>
		<tr>
			<td>Handledning</td>
			<td>2026-03-02</td>
			<td>10:00 - 11:00</td>
			<td>utan kurskod</td>
		</tr>
	</table>
	</body></html>`

	entries, err := PlannedSchedules(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Handledning", entries[0].Label)
}
