package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/database/models/budget"
)

// The RKA tree keeps the invariant that every node's pagu equals the
// sum of its direct children's pagu. There is no constraint system;
// the chain below is recomputed on every child insert/update/delete
// and after batch imports.

// RecomputeSubActivity refreshes one sub-activity's pagu from its
// accounts, then walks up through the activity and program.
func RecomputeSubActivity(db *gorm.DB, subActivityID uuid.UUID) error {
	var sub budget.SubActivity
	if err := db.First(&sub, subActivityID).Error; err != nil {
		return fmt.Errorf("failed to load sub-activity: %w", err)
	}

	if err := db.Model(&budget.SubActivity{}).
		Where("id = ?", subActivityID).
		Update("pagu", childSum(db, &budget.Account{}, "sub_activity_id", subActivityID)).Error; err != nil {
		return fmt.Errorf("failed to update sub-activity pagu: %w", err)
	}

	return RecomputeActivity(db, sub.ActivityID)
}

// RecomputeActivity refreshes one activity's pagu from its
// sub-activities, then the owning program.
func RecomputeActivity(db *gorm.DB, activityID uuid.UUID) error {
	var activity budget.Activity
	if err := db.First(&activity, activityID).Error; err != nil {
		return fmt.Errorf("failed to load activity: %w", err)
	}

	if err := db.Model(&budget.Activity{}).
		Where("id = ?", activityID).
		Update("pagu", childSum(db, &budget.SubActivity{}, "activity_id", activityID)).Error; err != nil {
		return fmt.Errorf("failed to update activity pagu: %w", err)
	}

	return RecomputeProgram(db, activity.ProgramID)
}

// RecomputeProgram refreshes one program's pagu from its activities.
func RecomputeProgram(db *gorm.DB, programID uuid.UUID) error {
	if err := db.Model(&budget.Program{}).
		Where("id = ?", programID).
		Update("pagu", childSum(db, &budget.Activity{}, "program_id", programID)).Error; err != nil {
		return fmt.Errorf("failed to update program pagu: %w", err)
	}
	return nil
}

// childSum returns a subquery summing child pagu, so the update is a
// single statement per level.
func childSum(db *gorm.DB, model interface{}, parentColumn string, parentID uuid.UUID) *gorm.DB {
	return db.Model(model).
		Select("COALESCE(SUM(pagu), 0)").
		Where(fmt.Sprintf("%s = ?", parentColumn), parentID)
}
