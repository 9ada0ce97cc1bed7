package postgres

import (
	"context"
	"database/sql"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
type FolderPostgres struct {
	db *sql.DB
}

func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

const folderColumns = "id, name, parent_id, assigned_standard_id, created_at"

func scanFolder(row interface{ Scan(...any) error }) (*model.Folder, error) {
	var f model.Folder
	if err := row.Scan(&f.ID, &f.Name, &f.ParentID, &f.AssignedStandardID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FolderPostgres) Create(ctx context.Context, folder *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, name, parent_id, assigned_standard_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + folderColumns
	row := r.db.QueryRowContext(ctx, q,
		folder.ID,
		folder.Name,
		folder.ParentID,
		folder.AssignedStandardID,
		folder.CreatedAt,
	)
	return scanFolder(row)
}

func (r *FolderPostgres) FindByID(ctx context.Context, id string) (*model.Folder, error) {
	const q = `SELECT ` + folderColumns + ` FROM folders WHERE id = $1`
	return scanFolder(r.db.QueryRowContext(ctx, q, id))
}

func (r *FolderPostgres) Children(ctx context.Context, parentID string) ([]model.Folder, error) {
	const q = `SELECT ` + folderColumns + ` FROM folders WHERE parent_id = $1 ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := make([]model.Folder, 0)
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *f)
	}
	return folders, rows.Err()
}

func (r *FolderPostgres) UpdateParent(ctx context.Context, id string, parentID *string) error {
	const q = `UPDATE folders SET parent_id = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, parentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *FolderPostgres) UpdateAssignedStandard(ctx context.Context, id string, standardID *string) error {
	const q = `UPDATE folders SET assigned_standard_id = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, standardID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
