package postgres

import (
	"database/sql"
	"errors"

	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

// ErrDefaultCollection 默认收藏夹不允许删除（数据层硬约束）
var ErrDefaultCollection = errors.New("默认收藏夹不允许删除")

type collectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) *collectionRepository {
	return &collectionRepository{db: db}
}

const collectionColumns = `c.id, c.user_id, c.name, c.description, c.is_public, c.is_default,
       c.created_at, c.updated_at`

func scanCollection(row interface{ Scan(...interface{}) error }) (*model.Collection, error) {
	var c model.Collection
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.IsPublic, &c.IsDefault,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepository) Create(collection *model.Collection) error {
	query := `INSERT INTO collections (user_id, name, description, is_public, is_default,
                  created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		collection.UserID, collection.Name, collection.Description,
		collection.IsPublic, collection.IsDefault,
	).Scan(&collection.ID, &collection.CreatedAt, &collection.UpdatedAt)
	if err != nil {
		util.Logger.Error("创建收藏夹失败", zap.Error(err))
		return err
	}
	util.Logger.Info("收藏夹创建成功", zap.Int("collection_id", collection.ID))
	return nil
}

func (r *collectionRepository) FindByID(id int) (*model.Collection, error) {
	query := `SELECT ` + collectionColumns + `,
              (SELECT COUNT(*) FROM collection_products cp WHERE cp.collection_id = c.id)
              FROM collections c WHERE c.id = $1`
	var c model.Collection
	err := r.db.QueryRow(query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.IsPublic, &c.IsDefault,
		&c.CreatedAt, &c.UpdatedAt, &c.ProductCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepository) Update(collection *model.Collection) error {
	_, err := r.db.Exec(`
        UPDATE collections
        SET name = $1, description = $2, is_public = $3, updated_at = NOW()
        WHERE id = $4`,
		collection.Name, collection.Description, collection.IsPublic, collection.ID)
	if err != nil {
		util.Logger.Error("更新收藏夹失败", zap.Error(err), zap.Int("collection_id", collection.ID))
	}
	return err
}

// Delete 删除收藏夹及其成员关系；is_default 行直接拒绝
func (r *collectionRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var isDefault bool
	err = tx.QueryRow(`SELECT is_default FROM collections WHERE id = $1`, id).Scan(&isDefault)
	if err != nil {
		return err
	}
	if isDefault {
		return ErrDefaultCollection
	}

	if _, err := tx.Exec(`DELETE FROM collection_products WHERE collection_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM collections WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *collectionRepository) ListByUser(userID int, includePrivate bool) ([]*model.Collection, error) {
	query := `SELECT ` + collectionColumns + `,
              (SELECT COUNT(*) FROM collection_products cp WHERE cp.collection_id = c.id)
              FROM collections c
              WHERE c.user_id = $1`
	if !includePrivate {
		query += ` AND c.is_public = TRUE`
	}
	query += ` ORDER BY c.is_default DESC, c.created_at ASC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*model.Collection
	for rows.Next() {
		var c model.Collection
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Description, &c.IsPublic, &c.IsDefault,
			&c.CreatedAt, &c.UpdatedAt, &c.ProductCount,
		)
		if err != nil {
			return nil, err
		}
		collections = append(collections, &c)
	}
	return collections, rows.Err()
}

func (r *collectionRepository) DefaultForUser(userID int) (*model.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections c
              WHERE c.user_id = $1 AND c.is_default = TRUE`
	c, err := scanCollection(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ToggleProduct 原子切换收藏夹成员关系，与投票一样依赖唯一约束而不是先查后写
func (r *collectionRepository) ToggleProduct(collectionID, productID int) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
        INSERT INTO collection_products (collection_id, product_id, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (collection_id, product_id) DO NOTHING`, collectionID, productID)
	if err != nil {
		util.Logger.Error("添加收藏失败", zap.Error(err))
		return false, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if inserted == 0 {
		if _, err := tx.Exec(`
            DELETE FROM collection_products
            WHERE collection_id = $1 AND product_id = $2`, collectionID, productID); err != nil {
			util.Logger.Error("移除收藏失败", zap.Error(err))
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return inserted > 0, nil
}

func (r *collectionRepository) ContainsProduct(collectionID, productID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM collection_products
            WHERE collection_id = $1 AND product_id = $2
        )`, collectionID, productID).Scan(&exists)
	return exists, err
}

func (r *collectionRepository) ListProducts(collectionID int) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + `
              FROM products p
              JOIN collection_products cp ON cp.product_id = p.id
              WHERE cp.collection_id = $1
              ORDER BY cp.created_at DESC`
	rows, err := r.db.Query(query, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *collectionRepository) CollectionIDsContainingProduct(userID, productID int) ([]int, error) {
	query := `SELECT cp.collection_id
              FROM collection_products cp
              JOIN collections c ON c.id = cp.collection_id
              WHERE c.user_id = $1 AND cp.product_id = $2`
	rows, err := r.db.Query(query, userID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
