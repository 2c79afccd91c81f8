package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/database/models/npd"
)

func TestTransitionHappyPath(t *testing.T) {
	status := StatusDraft

	status, err := Transition(status, EventSubmit)
	require.NoError(t, err)
	assert.Equal(t, StatusDiajukan, status)

	status, err = Transition(status, EventVerify)
	require.NoError(t, err)
	assert.Equal(t, StatusDiverifikasi, status)

	status, err = Transition(status, EventFinalize)
	require.NoError(t, err)
	assert.Equal(t, StatusFinal, status)
}

func TestTransitionRejectPaths(t *testing.T) {
	status, err := Transition(StatusDiajukan, EventReject)
	require.NoError(t, err)
	assert.Equal(t, StatusDitolak, status)

	status, err = Transition(StatusDiverifikasi, EventReject)
	require.NoError(t, err)
	assert.Equal(t, StatusDitolak, status)

	// A rejected document can be resubmitted after corrections.
	status, err = Transition(StatusDitolak, EventSubmit)
	require.NoError(t, err)
	assert.Equal(t, StatusDiajukan, status)
}

func TestTransitionFinalIsTerminal(t *testing.T) {
	for _, event := range []Event{EventSubmit, EventVerify, EventFinalize, EventReject} {
		_, err := Transition(StatusFinal, event)

		var transitionErr *TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, StatusFinal, transitionErr.From)
		assert.Equal(t, event, transitionErr.Event)
	}
}

func TestTransitionInvalidEdges(t *testing.T) {
	cases := []struct {
		from  Status
		event Event
	}{
		{StatusDraft, EventVerify},
		{StatusDraft, EventFinalize},
		{StatusDraft, EventReject},
		{StatusDiajukan, EventSubmit},
		{StatusDiajukan, EventFinalize},
		{StatusDiverifikasi, EventSubmit},
		{StatusDiverifikasi, EventVerify},
		{StatusDitolak, EventVerify},
	}

	for _, tc := range cases {
		next, err := Transition(tc.from, tc.event)
		assert.Error(t, err, "expected %s from %s to fail", tc.event, tc.from)
		assert.Equal(t, tc.from, next)
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	_, err := Transition(StatusFinal, EventSubmit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tidak diizinkan")
}

func TestCanTrigger(t *testing.T) {
	assert.True(t, CanTrigger(models.RolePPTK, EventSubmit))
	assert.True(t, CanTrigger(models.RoleVerifikator, EventVerify))
	assert.True(t, CanTrigger(models.RoleBendahara, EventVerify))
	assert.True(t, CanTrigger(models.RoleBendahara, EventFinalize))
	assert.True(t, CanTrigger(models.RoleVerifikator, EventReject))

	assert.False(t, CanTrigger(models.RolePPTK, EventVerify))
	assert.False(t, CanTrigger(models.RolePPTK, EventFinalize))
	assert.False(t, CanTrigger(models.RoleVerifikator, EventFinalize))
	assert.False(t, CanTrigger(models.RoleViewer, EventSubmit))
}

func TestCanTriggerAdminPassesEveryGuard(t *testing.T) {
	for _, event := range []Event{EventSubmit, EventVerify, EventFinalize, EventReject} {
		assert.True(t, CanTrigger(models.RoleAdmin, event))
	}
}

func TestCanEdit(t *testing.T) {
	assert.True(t, CanEdit(StatusDraft))
	assert.True(t, CanEdit(StatusDitolak))

	assert.False(t, CanEdit(StatusDiajukan))
	assert.False(t, CanEdit(StatusDiverifikasi))
	assert.False(t, CanEdit(StatusFinal))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusDiajukan, StatusDiverifikasi, StatusFinal, StatusDitolak} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("dibatalkan"))
	assert.False(t, ValidStatus(""))
}

func TestAllowedEvents(t *testing.T) {
	assert.Equal(t, []Event{EventSubmit}, AllowedEvents(StatusDraft))
	assert.Equal(t, []Event{EventSubmit}, AllowedEvents(StatusDitolak))
	assert.Equal(t, []Event{EventVerify, EventReject}, AllowedEvents(StatusDiajukan))
	assert.Equal(t, []Event{EventFinalize, EventReject}, AllowedEvents(StatusDiverifikasi))
	assert.Empty(t, AllowedEvents(StatusFinal))
}

func TestUncheckedRequiredNamesMissingItems(t *testing.T) {
	items := []npd.ChecklistItem{
		{Label: "Surat permintaan pembayaran", Required: true, Checked: true},
		{Label: "Kwitansi", Required: true, Checked: false},
		{Label: "Berita acara", Required: true, Checked: false},
		{Label: "Dokumentasi foto", Required: false, Checked: false},
	}

	assert.Equal(t, []string{"Kwitansi", "Berita acara"}, UncheckedRequired(items))
}

func TestUncheckedRequiredAllCheckedIsEmpty(t *testing.T) {
	items := []npd.ChecklistItem{
		{Label: "Surat permintaan pembayaran", Required: true, Checked: true},
		{Label: "Kwitansi", Required: true, Checked: true},
	}

	assert.Empty(t, UncheckedRequired(items))
}

func TestUncheckedRequiredIgnoresOptionalItems(t *testing.T) {
	items := []npd.ChecklistItem{
		{Label: "Dokumentasi foto", Required: false, Checked: false},
		{Label: "Catatan tambahan", Required: false, Checked: false},
	}

	assert.Empty(t, UncheckedRequired(items))
}

func TestUncheckedRequiredEmptyChecklist(t *testing.T) {
	assert.Empty(t, UncheckedRequired(nil))
	assert.Empty(t, UncheckedRequired([]npd.ChecklistItem{}))
}
