package postgres

import (
	"database/sql"

	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, slug, email, password_hash, avatar_url, bio,
       website_url, twitter_url, role, is_verified, created_at, updated_at, deleted_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Slug, &user.Email, &user.PasswordHash,
		&user.AvatarURL, &user.Bio, &user.WebsiteURL, &user.TwitterURL,
		&user.Role, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (username, slug, email, password_hash, avatar_url, bio,
                  website_url, twitter_url, role, is_verified, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		user.Username, user.Slug, user.Email, user.PasswordHash, user.AvatarURL,
		user.Bio, user.WebsiteURL, user.TwitterURL, user.Role, user.IsVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err))
		return err
	}
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) FindBySlug(slug string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE slug = $1 AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRow(query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) Update(user *model.User) error {
	query := `UPDATE users
              SET username = $1, slug = $2, avatar_url = $3, bio = $4,
                  website_url = $5, twitter_url = $6, role = $7, is_verified = $8,
                  updated_at = NOW()
              WHERE id = $9`
	_, err := r.db.Exec(query,
		user.Username, user.Slug, user.AvatarURL, user.Bio,
		user.WebsiteURL, user.TwitterURL, user.Role, user.IsVerified, user.ID)
	if err != nil {
		util.Logger.Error("更新用户失败", zap.Error(err), zap.Int("user_id", user.ID))
	}
	return err
}

// UpdatePassword 单独更新密码哈希，避免跟随资料字段的批量更新
func (r *userRepository) UpdatePassword(id int, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		util.Logger.Error("更新用户密码失败", zap.Error(err), zap.Int("user_id", id))
	}
	return err
}

func (r *userRepository) Delete(id int) error {
	// 软删除
	_, err := r.db.Exec(`UPDATE users SET deleted_at = NOW() WHERE id = $1`, id)
	if err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.Int("user_id", id))
	}
	return err
}

func (r *userRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&count)
	return count, err
}

func (r *userRepository) FindAll(page, pageSize int) ([]*model.User, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + userColumns + `
              FROM users
              WHERE deleted_at IS NULL
              ORDER BY created_at DESC
              LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindByIDs 按 ID 批量查询用户，用于页面级别的批量补全，避免逐行查询
func (r *userRepository) FindByIDs(ids []int) (map[int]*model.User, error) {
	result := make(map[int]*model.User)
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.db.Query(query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result[user.ID] = user
	}
	return result, rows.Err()
}
