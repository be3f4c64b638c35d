package services

import (
	"github.com/academyhq/academy_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RosterDelta splits a roster edit into the members that left and the
// members that joined. Order of the inputs does not matter.
func RosterDelta(old, updated []uuid.UUID) (added, removed []uuid.UUID) {
	oldSet := make(map[uuid.UUID]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	newSet := make(map[uuid.UUID]bool, len(updated))
	for _, id := range updated {
		newSet[id] = true
	}

	for _, id := range updated {
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range old {
		if !newSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// academyTeachers loads the subset of ids that actually belong to the
// academy. Ids from other tenants are silently dropped, matching the
// scoped update semantics everywhere else.
func academyTeachers(tx *gorm.DB, academyID uuid.UUID, ids []uuid.UUID) ([]*models.Teacher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var teachers []*models.Teacher
	if err := tx.Where("id IN ? AND academy_id = ?", ids, academyID).Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

func academyStudents(tx *gorm.DB, academyID uuid.UUID, ids []uuid.UUID) ([]*models.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var students []*models.Student
	if err := tx.Where("id IN ? AND academy_id = ?", ids, academyID).Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// FilterAcademyStudentIDs narrows a requested id list to the students
// that exist in the academy. Fee rows must only ever be built from this
// filtered set; attaching already drops foreign ids, and billing has to
// drop the same ones or the ledger gains rows for students who never
// made it onto the roster.
func FilterAcademyStudentIDs(tx *gorm.DB, academyID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	students, err := academyStudents(tx, academyID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out, nil
}

// AttachBatchTeachers adds the batch to each teacher's assignment set.
// Join rows are keyed on (batch, teacher) so replays are no-ops.
func AttachBatchTeachers(tx *gorm.DB, batch *models.Batch, teacherIDs []uuid.UUID) error {
	teachers, err := academyTeachers(tx, batch.AcademyID, teacherIDs)
	if err != nil || len(teachers) == 0 {
		return err
	}
	return tx.Model(batch).Association("Teachers").Append(teachers)
}

func DetachBatchTeachers(tx *gorm.DB, batch *models.Batch, teacherIDs []uuid.UUID) error {
	teachers, err := academyTeachers(tx, batch.AcademyID, teacherIDs)
	if err != nil || len(teachers) == 0 {
		return err
	}
	return tx.Model(batch).Association("Teachers").Delete(teachers)
}

// AttachBatchStudents adds the batch to each student's batch set.
func AttachBatchStudents(tx *gorm.DB, batch *models.Batch, studentIDs []uuid.UUID) error {
	students, err := academyStudents(tx, batch.AcademyID, studentIDs)
	if err != nil || len(students) == 0 {
		return err
	}
	return tx.Model(batch).Association("Students").Append(students)
}

func DetachBatchStudents(tx *gorm.DB, batch *models.Batch, studentIDs []uuid.UUID) error {
	students, err := academyStudents(tx, batch.AcademyID, studentIDs)
	if err != nil || len(students) == 0 {
		return err
	}
	return tx.Model(batch).Association("Students").Delete(students)
}

// SyncBatchRoster applies a batch edit's teacher and student lists as
// deltas against the previously loaded lists. The inverse references
// (Teacher.AssignedBatches, Student.Batches) are the same join rows, so
// both directions stay consistent from the one operation.
func SyncBatchRoster(tx *gorm.DB, batch *models.Batch, teacherIDs, studentIDs []uuid.UUID) (addedStudents, removedStudents []uuid.UUID, err error) {
	addedTeachers, removedTeachers := RosterDelta(batch.TeacherIDs(), teacherIDs)
	addedStudents, removedStudents = RosterDelta(batch.StudentIDs(), studentIDs)

	if err = DetachBatchTeachers(tx, batch, removedTeachers); err != nil {
		return nil, nil, err
	}
	if err = AttachBatchTeachers(tx, batch, addedTeachers); err != nil {
		return nil, nil, err
	}
	if err = DetachBatchStudents(tx, batch, removedStudents); err != nil {
		return nil, nil, err
	}
	if err = AttachBatchStudents(tx, batch, addedStudents); err != nil {
		return nil, nil, err
	}
	return addedStudents, removedStudents, nil
}

func academyBatches(tx *gorm.DB, academyID uuid.UUID, ids []uuid.UUID) ([]*models.Batch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var batches []*models.Batch
	if err := tx.Where("id IN ? AND academy_id = ?", ids, academyID).Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// AttachStudentBatches enrolls the student into each batch, from the
// student side of the same join table.
func AttachStudentBatches(tx *gorm.DB, student *models.Student, batchIDs []uuid.UUID) error {
	batches, err := academyBatches(tx, student.AcademyID, batchIDs)
	if err != nil || len(batches) == 0 {
		return err
	}
	return tx.Model(student).Association("Batches").Append(batches)
}

func DetachStudentBatches(tx *gorm.DB, student *models.Student, batchIDs []uuid.UUID) error {
	batches, err := academyBatches(tx, student.AcademyID, batchIDs)
	if err != nil || len(batches) == 0 {
		return err
	}
	return tx.Model(student).Association("Batches").Delete(batches)
}

// SyncStudentBatches applies a student edit's batch list as a delta
// against the previously loaded list.
func SyncStudentBatches(tx *gorm.DB, student *models.Student, batchIDs []uuid.UUID) (added, removed []uuid.UUID, err error) {
	old := make([]uuid.UUID, 0, len(student.Batches))
	for _, b := range student.Batches {
		old = append(old, b.ID)
	}
	added, removed = RosterDelta(old, batchIDs)

	if err = DetachStudentBatches(tx, student, removed); err != nil {
		return nil, nil, err
	}
	if err = AttachStudentBatches(tx, student, added); err != nil {
		return nil, nil, err
	}
	return added, removed, nil
}

// SyncTeacherAssignments applies a teacher edit's batch list as a delta.
func SyncTeacherAssignments(tx *gorm.DB, teacher *models.Teacher, batchIDs []uuid.UUID) error {
	old := make([]uuid.UUID, 0, len(teacher.AssignedBatches))
	for _, b := range teacher.AssignedBatches {
		old = append(old, b.ID)
	}
	added, removed := RosterDelta(old, batchIDs)

	if len(removed) > 0 {
		batches, err := academyBatches(tx, teacher.AcademyID, removed)
		if err != nil {
			return err
		}
		if err := tx.Model(teacher).Association("AssignedBatches").Delete(batches); err != nil {
			return err
		}
	}
	if len(added) > 0 {
		batches, err := academyBatches(tx, teacher.AcademyID, added)
		if err != nil {
			return err
		}
		if err := tx.Model(teacher).Association("AssignedBatches").Append(batches); err != nil {
			return err
		}
	}
	return nil
}

// ClearBatchRoster pulls the batch out of every teacher's and student's
// back-reference set ahead of deleting the batch itself.
func ClearBatchRoster(tx *gorm.DB, batch *models.Batch) error {
	if err := tx.Model(batch).Association("Teachers").Clear(); err != nil {
		return err
	}
	return tx.Model(batch).Association("Students").Clear()
}

// RemoveTeacherEverywhere drops a deleted teacher from every batch
// teacher list in the academy.
func RemoveTeacherEverywhere(tx *gorm.DB, teacher *models.Teacher) error {
	return tx.Model(teacher).Association("AssignedBatches").Clear()
}

// RemoveStudentEverywhere drops a deleted student from every batch roster
// in the academy.
func RemoveStudentEverywhere(tx *gorm.DB, student *models.Student) error {
	return tx.Model(student).Association("Batches").Clear()
}
