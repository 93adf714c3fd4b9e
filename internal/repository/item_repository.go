package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"showcase/internal/domain/models"
	"showcase/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	itemsTable         = "items"
	uniqueViolationErr = "23505"
)

var itemColumns = []string{
	"id",
	"title",
	"description",
	"image_url",
	"thumbnail_url",
	"author_id",
	"author_name",
	"author_avatar",
	"tags",
	"category",
	"created_at",
	"updated_at",
	"likes",
	"views",
}

type PostgresItemRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewPostgresItemRepo(db *pgxpool.Pool) *PostgresItemRepo {
	return &PostgresItemRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll returns items in reverse insertion order.
func (r *PostgresItemRepo) GetAll(ctx context.Context) ([]models.GalleryItem, error) {
	const op = "repository.PostgresItemRepo.GetAll"

	query, args, err := r.sb.Select(itemColumns...).
		From(itemsTable).
		OrderBy("seq DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.GalleryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (r *PostgresItemRepo) GetByID(ctx context.Context, id string) (models.GalleryItem, error) {
	const op = "repository.PostgresItemRepo.GetByID"

	query, args, err := r.sb.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (r *PostgresItemRepo) Insert(ctx context.Context, item models.GalleryItem) error {
	const op = "repository.PostgresItemRepo.Insert"

	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}

	query, args, err := r.sb.Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			item.ID,
			item.Title,
			item.Description,
			item.ImageURL,
			item.ThumbnailURL,
			item.Author.ID,
			item.Author.Name,
			item.Author.Avatar,
			tags,
			item.Category,
			item.CreatedAt,
			item.UpdatedAt,
			item.Likes,
			item.Views,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErr {
			return fmt.Errorf("%s: %w", op, storage.ErrItemExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IncrementViews relies on the row lock taken by UPDATE, so concurrent calls
// never lose an increment.
func (r *PostgresItemRepo) IncrementViews(ctx context.Context, id string) (models.GalleryItem, error) {
	const op = "repository.PostgresItemRepo.IncrementViews"

	return r.updateCounter(ctx, op, squirrel.Eq{"id": id}, "views", squirrel.Expr("views + 1"))
}

func (r *PostgresItemRepo) AdjustLikes(ctx context.Context, id string, delta int) (models.GalleryItem, error) {
	const op = "repository.PostgresItemRepo.AdjustLikes"

	return r.updateCounter(ctx, op, squirrel.Eq{"id": id}, "likes", squirrel.Expr("GREATEST(likes + ?, 0)", delta))
}

func (r *PostgresItemRepo) Count(ctx context.Context) (int, error) {
	const op = "repository.PostgresItemRepo.Count"

	query, args, err := r.sb.Select("COUNT(*)").From(itemsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (r *PostgresItemRepo) updateCounter(ctx context.Context, op string, where squirrel.Eq, column string, value squirrel.Sqlizer) (models.GalleryItem, error) {
	query, args, err := r.sb.Update(itemsTable).
		Set(column, value).
		Where(where).
		Suffix("RETURNING " + strings.Join(itemColumns, ", ")).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := scanItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func scanItem(row pgx.Row) (models.GalleryItem, error) {
	var item models.GalleryItem
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.ImageURL,
		&item.ThumbnailURL,
		&item.Author.ID,
		&item.Author.Name,
		&item.Author.Avatar,
		&item.Tags,
		&item.Category,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Likes,
		&item.Views,
	)
	return item, err
}
