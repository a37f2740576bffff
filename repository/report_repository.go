package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classifieds/internal/db"
	"classifieds/models"
)

const reportColumns = `id, title, content, created_at, creator_id, subject_id, advertisement_id`

type ReportRepository struct {
	db db.Querier
}

func NewReportRepository(q db.Querier) *ReportRepository {
	return &ReportRepository{db: q}
}

// Create inserts a report. CreatedAt defaults to now (UTC) when zero.
func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) (*models.Report, error) {
	if rep == nil {
		return nil, errors.New("report is nil")
	}
	out := *rep
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	out.CreatedAt = out.CreatedAt.UTC()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reports (title, content, created_at, creator_id, subject_id, advertisement_id) VALUES (?,?,?,?,?,?) RETURNING id`,
		out.Title, out.Content, out.CreatedAt, out.CreatorID, out.SubjectID, out.AdvertisementID).Scan(&out.ID)
	if err != nil {
		return nil, classify(err)
	}
	return &out, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rep, err := scanReport(r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rep, nil
}

// List returns one page of reports, newest first.
func (r *ReportRepository) List(ctx context.Context, page Page) ([]models.Report, error) {
	limit, offset := page.limitOffset()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, r.db, "reports", id)
}

func scanReport(s rowScanner) (*models.Report, error) {
	var rep models.Report
	if err := s.Scan(&rep.ID, &rep.Title, &rep.Content, &rep.CreatedAt, &rep.CreatorID, &rep.SubjectID, &rep.AdvertisementID); err != nil {
		return nil, err
	}
	return &rep, nil
}
