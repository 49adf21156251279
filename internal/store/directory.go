package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptiq/internal/attempt"
)

// DirectoryRepo resolves students and courses.
type DirectoryRepo struct {
	drv *entsql.Driver
}

// PutStudent inserts or updates a student.
func (r *DirectoryRepo) PutStudent(ctx context.Context, s attempt.Student) error {
	query, args := builder().Insert(StudentsTable.Name).
		Columns("id", "name", "created_at").
		Values(s.ID, s.Name, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("name")
			}),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save student %s: %w", s.ID, err)
	}
	return nil
}

// PutCourse inserts or updates a course.
func (r *DirectoryRepo) PutCourse(ctx context.Context, c attempt.Course) error {
	query, args := builder().Insert(CoursesTable.Name).
		Columns("id", "title", "description", "created_at").
		Values(c.ID, c.Title, c.Description, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("title")
				u.SetExcluded("description")
			}),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save course %s: %w", c.ID, err)
	}
	return nil
}

// Student implements attempt.Directory.
func (r *DirectoryRepo) Student(ctx context.Context, id string) (*attempt.Student, error) {
	query, args := builder().Select("id", "name").
		From(entsql.Table(StudentsTable.Name)).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("student %q: %w", id, attempt.ErrNotFound)
	}
	var s attempt.Student
	if err := rows.Scan(&s.ID, &s.Name); err != nil {
		return nil, fmt.Errorf("scan student: %w", err)
	}
	return &s, nil
}

// Course implements attempt.Directory.
func (r *DirectoryRepo) Course(ctx context.Context, id string) (*attempt.Course, error) {
	query, args := builder().Select("id", "title", "description").
		From(entsql.Table(CoursesTable.Name)).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query course: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("course %q: %w", id, attempt.ErrNotFound)
	}
	var c attempt.Course
	if err := rows.Scan(&c.ID, &c.Title, &c.Description); err != nil {
		return nil, fmt.Errorf("scan course: %w", err)
	}
	return &c, nil
}
