package postgres

import (
	"database/sql"

	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

type communityRepository struct {
	db *sql.DB
}

func NewCommunityRepository(db *sql.DB) *communityRepository {
	return &communityRepository{db: db}
}

// ToggleVote 原子切换投票状态并返回切换后的状态。
// 先尝试插入，(user_id, product_id) 唯一约束保证并发下不会重复插入；
// 插入无效说明票已存在，转为删除。不依赖客户端的先查后写。
func (r *communityRepository) ToggleVote(userID, productID int) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
        INSERT INTO votes (user_id, product_id, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	if err != nil {
		util.Logger.Error("插入投票失败", zap.Error(err))
		return false, err
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if inserted == 0 {
		// 票已存在，取消投票
		if _, err := tx.Exec(`DELETE FROM votes WHERE user_id = $1 AND product_id = $2`,
			userID, productID); err != nil {
			util.Logger.Error("删除投票失败", zap.Error(err))
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	voted := inserted > 0
	util.Logger.Info("投票状态切换成功",
		zap.Int("user_id", userID),
		zap.Int("product_id", productID),
		zap.Bool("voted", voted))
	return voted, nil
}

func (r *communityRepository) HasVoted(userID, productID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM votes
            WHERE user_id = $1 AND product_id = $2
        )`, userID, productID).Scan(&exists)
	return exists, err
}

// VoteCount 读取时聚合，投票数永远从票据表派生而不是维护存量计数
func (r *communityRepository) VoteCount(productID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM votes WHERE product_id = $1`, productID).Scan(&count)
	return count, err
}

// VoteCountsForProducts 按产品 ID 批量聚合投票数
func (r *communityRepository) VoteCountsForProducts(productIDs []int) (map[int]int, error) {
	result := make(map[int]int)
	if len(productIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(`
        SELECT product_id, COUNT(*)
        FROM votes
        WHERE product_id = ANY($1)
        GROUP BY product_id`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID, count int
		if err := rows.Scan(&productID, &count); err != nil {
			return nil, err
		}
		result[productID] = count
	}
	return result, rows.Err()
}

func (r *communityRepository) VotedForProducts(userID int, productIDs []int) (map[int]bool, error) {
	result := make(map[int]bool)
	if len(productIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(`
        SELECT product_id FROM votes
        WHERE user_id = $1 AND product_id = ANY($2)`, userID, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID int
		if err := rows.Scan(&productID); err != nil {
			return nil, err
		}
		result[productID] = true
	}
	return result, rows.Err()
}

func (r *communityRepository) ListVotedProducts(userID, page, pageSize int) ([]*model.Product, int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM votes WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + productColumns + `
              FROM products p
              JOIN votes v ON v.product_id = p.id
              WHERE v.user_id = $1
              ORDER BY v.created_at DESC
              LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(query, userID, pageSize, offset)
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

func (r *communityRepository) CreateComment(comment *model.Comment) error {
	query := `INSERT INTO comments (product_id, user_id, parent_id, content, created_at, updated_at)
              VALUES ($1, $2, $3, $4, NOW(), NOW())
              RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query,
		comment.ProductID, comment.UserID, comment.ParentID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err))
		return err
	}
	util.Logger.Info("评论创建成功", zap.Int("comment_id", comment.ID))
	return nil
}

func (r *communityRepository) GetCommentByID(id int) (*model.Comment, error) {
	query := `
        SELECT c.id, c.product_id, c.user_id, c.parent_id, c.content, c.is_edited,
               c.created_at, c.updated_at,
               u.username, u.slug, u.avatar_url, u.bio
        FROM comments c
        LEFT JOIN users u ON c.user_id = u.id
        WHERE c.id = $1`

	var comment model.Comment
	var user model.User
	err := r.db.QueryRow(query, id).Scan(
		&comment.ID, &comment.ProductID, &comment.UserID, &comment.ParentID,
		&comment.Content, &comment.IsEdited, &comment.CreatedAt, &comment.UpdatedAt,
		&user.Username, &user.Slug, &user.AvatarURL, &user.Bio,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	user.ID = comment.UserID
	comment.User = &user
	return &comment, nil
}

// ListCommentsByProduct 返回产品的顶层评论（最新在前），每条附带直接回复（最早在前）。
// 这个不对称的排序是前端约定的一部分，必须保持。
func (r *communityRepository) ListCommentsByProduct(productID int) ([]*model.Comment, error) {
	query := `
        SELECT c.id, c.product_id, c.user_id, c.parent_id, c.content, c.is_edited,
               c.created_at, c.updated_at,
               u.username, u.slug, u.avatar_url, u.bio
        FROM comments c
        LEFT JOIN users u ON c.user_id = u.id
        WHERE c.product_id = $1
        ORDER BY c.created_at ASC`

	rows, err := r.db.Query(query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*model.Comment
	for rows.Next() {
		var comment model.Comment
		var user model.User
		err := rows.Scan(
			&comment.ID, &comment.ProductID, &comment.UserID, &comment.ParentID,
			&comment.Content, &comment.IsEdited, &comment.CreatedAt, &comment.UpdatedAt,
			&user.Username, &user.Slug, &user.AvatarURL, &user.Bio,
		)
		if err != nil {
			return nil, err
		}
		user.ID = comment.UserID
		comment.User = &user
		all = append(all, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 按 parent_id 建立索引，将回复挂到各自的顶层评论下
	byID := make(map[int]*model.Comment, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	var topLevel []*model.Comment
	for _, c := range all {
		if c.ParentID == nil {
			topLevel = append(topLevel, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			// 查询按 created_at 升序，回复天然最早在前
			parent.Replies = append(parent.Replies, c)
		}
		// 父评论已被删除的孤儿回复不展示，但行保留在表里
	}

	// 顶层评论改为最新在前
	for i, j := 0, len(topLevel)-1; i < j; i, j = i+1, j-1 {
		topLevel[i], topLevel[j] = topLevel[j], topLevel[i]
	}
	return topLevel, nil
}

func (r *communityRepository) UpdateComment(comment *model.Comment) error {
	_, err := r.db.Exec(`
        UPDATE comments
        SET content = $1, is_edited = TRUE, updated_at = NOW()
        WHERE id = $2`, comment.Content, comment.ID)
	if err != nil {
		util.Logger.Error("更新评论失败", zap.Error(err), zap.Int("comment_id", comment.ID))
	}
	comment.IsEdited = true
	return err
}

// DeleteComment 删除评论。cascade 为 false 时保留回复（与线上观察到的行为一致，
// 回复会成为带悬空 parent_id 的孤儿行）；为 true 时一并删除直接回复。
func (r *communityRepository) DeleteComment(id int, cascade bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if cascade {
		if _, err := tx.Exec(`DELETE FROM comments WHERE parent_id = $1`, id); err != nil {
			util.Logger.Error("删除回复失败", zap.Error(err), zap.Int("comment_id", id))
			return err
		}
	}

	if _, err := tx.Exec(`DELETE FROM comments WHERE id = $1`, id); err != nil {
		util.Logger.Error("删除评论失败", zap.Error(err), zap.Int("comment_id", id))
		return err
	}

	return tx.Commit()
}

func (r *communityRepository) CommentCount(productID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE product_id = $1`, productID).Scan(&count)
	return count, err
}

func (r *communityRepository) CommentCountsForProducts(productIDs []int) (map[int]int, error) {
	result := make(map[int]int)
	if len(productIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(`
        SELECT product_id, COUNT(*)
        FROM comments
        WHERE product_id = ANY($1)
        GROUP BY product_id`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID, count int
		if err := rows.Scan(&productID, &count); err != nil {
			return nil, err
		}
		result[productID] = count
	}
	return result, rows.Err()
}

// CreateFollow 幂等创建关注关系，返回是否新建。
// (follower_id, following_id) 唯一约束保证重复请求不会产生第二行。
func (r *communityRepository) CreateFollow(followerID, followingID int) (bool, error) {
	result, err := r.db.Exec(`
        INSERT INTO follows (follower_id, following_id, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (follower_id, following_id) DO NOTHING`, followerID, followingID)
	if err != nil {
		util.Logger.Error("创建关注关系失败", zap.Error(err))
		return false, err
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

func (r *communityRepository) DeleteFollow(followerID, followingID int) error {
	_, err := r.db.Exec(`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		util.Logger.Error("取关失败", zap.Error(err))
	}
	return err
}

func (r *communityRepository) IsFollowing(followerID, followingID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM follows
            WHERE follower_id = $1 AND following_id = $2
        )`, followerID, followingID).Scan(&exists)
	return exists, err
}

func (r *communityRepository) GetFollowers(userID, page, pageSize int) ([]*model.User, error) {
	offset := (page - 1) * pageSize
	query := `
        SELECT u.id, u.username, u.slug, u.avatar_url, u.bio
        FROM users u
        JOIN follows f ON u.id = f.follower_id
        WHERE f.following_id = $1
        ORDER BY f.created_at DESC
        LIMIT $2 OFFSET $3`
	return r.queryUsers(query, userID, pageSize, offset)
}

func (r *communityRepository) GetFollowing(userID, page, pageSize int) ([]*model.User, error) {
	offset := (page - 1) * pageSize
	query := `
        SELECT u.id, u.username, u.slug, u.avatar_url, u.bio
        FROM users u
        JOIN follows f ON u.id = f.following_id
        WHERE f.follower_id = $1
        ORDER BY f.created_at DESC
        LIMIT $2 OFFSET $3`
	return r.queryUsers(query, userID, pageSize, offset)
}

func (r *communityRepository) queryUsers(query string, args ...interface{}) ([]*model.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Slug, &user.AvatarURL, &user.Bio); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (r *communityRepository) GetFollowerCount(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE following_id = $1`, userID).Scan(&count)
	return count, err
}

func (r *communityRepository) GetFollowingCount(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE follower_id = $1`, userID).Scan(&count)
	return count, err
}
