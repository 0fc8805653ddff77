package postgres

import (
	"database/sql"

	"nichehunt-backend/internal/model"
)

type relationshipRepository struct {
	db *sql.DB
}

func NewRelationshipRepository(db *sql.DB) *relationshipRepository {
	return &relationshipRepository{db: db}
}

// MutualFollowers 同时关注 userA 和 userB 的用户交集。
// 源数据没有约定排序，这里按用户 ID 升序取前 limit 个，调用方按集合比较。
func (r *relationshipRepository) MutualFollowers(userA, userB, limit int) ([]*model.User, error) {
	query := `
        SELECT u.id, u.username, u.slug, u.avatar_url, u.bio
        FROM users u
        JOIN follows fa ON fa.follower_id = u.id AND fa.following_id = $1
        JOIN follows fb ON fb.follower_id = u.id AND fb.following_id = $2
        ORDER BY u.id ASC
        LIMIT $3`

	rows, err := r.db.Query(query, userA, userB, limit)
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

// CategoryEngagement 统计用户在各分类下发布或投票过的产品数。
// 发布和投票同一产品只计一次（UNION 去重）。
func (r *relationshipRepository) CategoryEngagement(userID int) ([]model.CategoryEngagement, error) {
	query := `
        SELECT c.id, c.name, COUNT(DISTINCT e.product_id)
        FROM (
            SELECT id AS product_id, category_id FROM products WHERE user_id = $1
            UNION
            SELECT p.id AS product_id, p.category_id
            FROM votes v JOIN products p ON p.id = v.product_id
            WHERE v.user_id = $1
        ) e
        JOIN categories c ON c.id = e.category_id
        GROUP BY c.id, c.name
        ORDER BY c.id ASC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var engagements []model.CategoryEngagement
	for rows.Next() {
		var e model.CategoryEngagement
		if err := rows.Scan(&e.CategoryID, &e.CategoryName, &e.Count); err != nil {
			return nil, err
		}
		engagements = append(engagements, e)
	}
	return engagements, rows.Err()
}

func (r *relationshipRepository) VotesOnUserProducts(voterID, ownerID int) (int, error) {
	var count int
	err := r.db.QueryRow(`
        SELECT COUNT(*)
        FROM votes v
        JOIN products p ON p.id = v.product_id
        WHERE v.user_id = $1 AND p.user_id = $2`, voterID, ownerID).Scan(&count)
	return count, err
}

func (r *relationshipRepository) CommentsOnUserProducts(commenterID, ownerID int) (int, error) {
	var count int
	err := r.db.QueryRow(`
        SELECT COUNT(*)
        FROM comments c
        JOIN products p ON p.id = c.product_id
        WHERE c.user_id = $1 AND p.user_id = $2`, commenterID, ownerID).Scan(&count)
	return count, err
}

// SharedCollections userB 的公开收藏夹中，与 userA 在任意收藏夹里收藏过的产品
// 集合有交集的部分，按交集大小降序
func (r *relationshipRepository) SharedCollections(userA, userB, limit int) ([]model.SharedCollection, error) {
	query := `
        SELECT c.id, c.name, c.user_id, COUNT(DISTINCT cp.product_id)
        FROM collections c
        JOIN collection_products cp ON cp.collection_id = c.id
        WHERE c.user_id = $1 AND c.is_public = TRUE
          AND cp.product_id IN (
              SELECT cp2.product_id
              FROM collection_products cp2
              JOIN collections c2 ON c2.id = cp2.collection_id
              WHERE c2.user_id = $2
          )
        GROUP BY c.id, c.name, c.user_id
        ORDER BY COUNT(DISTINCT cp.product_id) DESC, c.id ASC
        LIMIT $3`

	rows, err := r.db.Query(query, userB, userA, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shared []model.SharedCollection
	for rows.Next() {
		var s model.SharedCollection
		if err := rows.Scan(&s.CollectionID, &s.Name, &s.OwnerID, &s.Shared); err != nil {
			return nil, err
		}
		shared = append(shared, s)
	}
	return shared, rows.Err()
}
