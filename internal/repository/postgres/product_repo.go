package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/repository/interfaces"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *productRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.user_id, p.name, p.tagline, p.description, p.status,
       p.category_id, p.launch_date, p.is_featured, p.view_count, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Tagline, &p.Description, &p.Status,
		&p.CategoryID, &p.LaunchDate, &p.IsFeatured, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Create(product *model.Product, tagIDs []int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO products (user_id, name, tagline, description, status,
                  category_id, launch_date, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err = tx.QueryRow(query,
		product.UserID, product.Name, product.Tagline, product.Description,
		product.Status, product.CategoryID, product.LaunchDate,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		util.Logger.Error("创建产品失败", zap.Error(err))
		return err
	}

	// 绑定标签
	for _, tagID := range tagIDs {
		_, err = tx.Exec(`INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)
                          ON CONFLICT DO NOTHING`, product.ID, tagID)
		if err != nil {
			util.Logger.Error("绑定产品标签失败", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return err
	}

	util.Logger.Info("产品创建成功", zap.Int("product_id", product.ID))
	return nil
}

func (r *productRepository) FindByID(id int) (*model.Product, error) {
	query := `
        SELECT ` + productColumns + `,
               u.username, u.slug, u.avatar_url, u.bio
        FROM products p
        LEFT JOIN users u ON p.user_id = u.id
        WHERE p.id = $1`

	var p model.Product
	var user model.User
	err := r.db.QueryRow(query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Tagline, &p.Description, &p.Status,
		&p.CategoryID, &p.LaunchDate, &p.IsFeatured, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&user.Username, &user.Slug, &user.AvatarURL, &user.Bio,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.ID = p.UserID
	p.User = &user
	return &p, nil
}

func (r *productRepository) Update(product *model.Product) error {
	query := `UPDATE products
              SET name = $1, tagline = $2, description = $3, status = $4,
                  category_id = $5, launch_date = $6, updated_at = NOW()
              WHERE id = $7`
	_, err := r.db.Exec(query,
		product.Name, product.Tagline, product.Description, product.Status,
		product.CategoryID, product.LaunchDate, product.ID)
	if err != nil {
		util.Logger.Error("更新产品失败", zap.Error(err), zap.Int("product_id", product.ID))
	}
	return err
}

func (r *productRepository) Delete(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 先清理从属行，再删除产品本身
	for _, q := range []string{
		`DELETE FROM votes WHERE product_id = $1`,
		`DELETE FROM comments WHERE product_id = $1`,
		`DELETE FROM collection_products WHERE product_id = $1`,
		`DELETE FROM product_tags WHERE product_id = $1`,
		`DELETE FROM products WHERE id = $1`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			util.Logger.Error("删除产品失败", zap.Error(err), zap.Int("product_id", id))
			return err
		}
	}

	return tx.Commit()
}

func (r *productRepository) List(filter interfaces.ProductFilter, page, pageSize int) ([]*model.Product, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("p.status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.CategoryID > 0 {
		where = append(where, fmt.Sprintf("p.category_id = $%d", idx))
		args = append(args, filter.CategoryID)
		idx++
	}
	if filter.UserID > 0 {
		where = append(where, fmt.Sprintf("p.user_id = $%d", idx))
		args = append(args, filter.UserID)
		idx++
	}
	if filter.Query != "" {
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.tagline ILIKE $%d)", idx, idx))
		args = append(args, "%"+filter.Query+"%")
		idx++
	}

	whereClause := strings.Join(where, " AND ")

	// 首先获取总数
	var total int
	countQuery := `SELECT COUNT(*) FROM products p WHERE ` + whereClause
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// 获取分页数据
	offset := (page - 1) * pageSize
	query := `SELECT ` + productColumns + `
              FROM products p
              WHERE ` + whereClause +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *productRepository) ListFeatured(limit int) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + `
              FROM products p
              WHERE p.is_featured = TRUE AND p.status = 'published'
              ORDER BY p.launch_date DESC
              LIMIT $1`
	return r.queryProducts(query, limit)
}

// ListTrending 按最近时间窗口内的投票数排序
func (r *productRepository) ListTrending(since time.Time, limit int) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + `
              FROM products p
              JOIN votes v ON v.product_id = p.id AND v.created_at >= $1
              WHERE p.status = 'published'
              GROUP BY p.id
              ORDER BY COUNT(v.user_id) DESC, p.launch_date DESC
              LIMIT $2`
	return r.queryProducts(query, since, limit)
}

// ListByLaunchWindow 按发布日期窗口内的总投票数排名（日榜/周榜）
func (r *productRepository) ListByLaunchWindow(from, to time.Time, limit int) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + `
              FROM products p
              LEFT JOIN votes v ON v.product_id = p.id
              WHERE p.status = 'published' AND p.launch_date >= $1 AND p.launch_date < $2
              GROUP BY p.id
              ORDER BY COUNT(v.user_id) DESC, p.launch_date DESC
              LIMIT $3`
	return r.queryProducts(query, from, to, limit)
}

func (r *productRepository) queryProducts(query string, args ...interface{}) ([]*model.Product, error) {
	rows, err := r.db.Query(query, args...)
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

func (r *productRepository) IncrementViewCount(id int) error {
	_, err := r.db.Exec(`UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

func (r *productRepository) SetFeatured(id int, featured bool) error {
	result, err := r.db.Exec(`UPDATE products SET is_featured = $1, updated_at = NOW() WHERE id = $2`, featured, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *productRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (r *productRepository) CreateCategory(category *model.Category) error {
	query := `INSERT INTO categories (name, slug, created_at) VALUES ($1, $2, NOW())
              RETURNING id, created_at`
	return r.db.QueryRow(query, category.Name, category.Slug).Scan(&category.ID, &category.CreatedAt)
}

func (r *productRepository) ListCategories() ([]*model.Category, error) {
	rows, err := r.db.Query(`SELECT id, name, slug, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *productRepository) FindCategoriesByIDs(ids []int) (map[int]*model.Category, error) {
	result := make(map[int]*model.Category)
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(`SELECT id, name, slug, created_at FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		result[c.ID] = &c
	}
	return result, rows.Err()
}

func (r *productRepository) CreateTag(tag *model.Tag) error {
	query := `INSERT INTO tags (name, created_at) VALUES ($1, NOW()) RETURNING id, created_at`
	return r.db.QueryRow(query, tag.Name).Scan(&tag.ID, &tag.CreatedAt)
}

func (r *productRepository) ListTags() ([]*model.Tag, error) {
	rows, err := r.db.Query(`SELECT id, name, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

func (r *productRepository) AddTagToProduct(productID, tagID int) error {
	_, err := r.db.Exec(`INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2)
                         ON CONFLICT DO NOTHING`, productID, tagID)
	return err
}

// TagsForProducts 按产品 ID 批量查询标签，避免逐行查询
func (r *productRepository) TagsForProducts(productIDs []int) (map[int][]model.Tag, error) {
	result := make(map[int][]model.Tag)
	if len(productIDs) == 0 {
		return result, nil
	}

	query := `SELECT pt.product_id, t.id, t.name, t.created_at
              FROM product_tags pt
              JOIN tags t ON t.id = pt.tag_id
              WHERE pt.product_id = ANY($1)
              ORDER BY t.name ASC`
	rows, err := r.db.Query(query, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID int
		var t model.Tag
		if err := rows.Scan(&productID, &t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], t)
	}
	return result, rows.Err()
}
