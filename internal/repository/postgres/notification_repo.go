package postgres

import (
	"database/sql"
	"time"

	"nichehunt-backend/internal/model"
	"nichehunt-backend/internal/util"

	"go.uber.org/zap"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	query := `INSERT INTO notifications (user_id, type, title, message,
                  related_product_id, related_user_id, is_read, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
              RETURNING id, created_at`
	err := r.db.QueryRow(query,
		notification.UserID, notification.Type, notification.Title, notification.Message,
		notification.RelatedProductID, notification.RelatedUserID,
	).Scan(&notification.ID, &notification.CreatedAt)
	if err != nil {
		util.Logger.Error("创建通知失败", zap.Error(err))
		return err
	}
	return nil
}

func (r *notificationRepository) FindByID(id int) (*model.Notification, error) {
	query := `SELECT id, user_id, type, title, message, related_product_id,
                     related_user_id, is_read, created_at
              FROM notifications WHERE id = $1`
	var n model.Notification
	err := r.db.QueryRow(query, id).Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
		&n.RelatedProductID, &n.RelatedUserID, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) List(userID, page, pageSize int) ([]*model.Notification, int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `
        SELECT n.id, n.user_id, n.type, n.title, n.message,
               n.related_product_id, n.related_user_id, n.is_read, n.created_at,
               u.username, u.slug, u.avatar_url
        FROM notifications n
        LEFT JOIN users u ON n.related_user_id = u.id
        WHERE n.user_id = $1
        ORDER BY n.created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		var username, slug, avatarURL sql.NullString
		err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.RelatedProductID, &n.RelatedUserID, &n.IsRead, &n.CreatedAt,
			&username, &slug, &avatarURL,
		)
		if err != nil {
			return nil, 0, err
		}
		if n.RelatedUserID != nil && username.Valid {
			n.RelatedUser = &model.User{
				ID:        *n.RelatedUserID,
				Username:  username.String,
				Slug:      slug.String,
				AvatarURL: avatarURL.String,
			}
		}
		notifications = append(notifications, &n)
	}
	return notifications, total, rows.Err()
}

// MarkRead 单调操作：只会把 is_read 从 false 置为 true
func (r *notificationRepository) MarkRead(id int) error {
	_, err := r.db.Exec(`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND is_read = FALSE`, id)
	if err != nil {
		util.Logger.Error("标记通知已读失败", zap.Error(err), zap.Int("notification_id", id))
	}
	return err
}

func (r *notificationRepository) MarkAllRead(userID int) error {
	_, err := r.db.Exec(`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		util.Logger.Error("标记全部通知已读失败", zap.Error(err), zap.Int("user_id", userID))
	}
	return err
}

// UnreadCount 未读数是派生值而不是存量计数
func (r *notificationRepository) UnreadCount(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`
        SELECT COUNT(*) FROM notifications
        WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}

func (r *notificationRepository) DeleteOlderThan(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, t)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
