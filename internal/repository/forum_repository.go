package repository

import (
	"cryptoseven_backend/internal/model"

	"gorm.io/gorm"
)

type ForumRepository struct {
	DB *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{DB: db}
}

func (r *ForumRepository) FindPosts(category string, page, pageSize int) ([]model.ForumPost, int64, error) {
	var posts []model.ForumPost
	var total int64

	q := r.DB.Model(&model.ForumPost{})
	if category != "" && category != "all" {
		q = q.Where("category = ?", category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&posts).Error
	return posts, total, err
}

func (r *ForumRepository) FindPostByID(id string) (*model.ForumPost, error) {
	var post model.ForumPost
	err := r.DB.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("forum_comments.created_at ASC")
	}).First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *ForumRepository) CreatePost(post *model.ForumPost) error {
	return r.DB.Create(post).Error
}

func (r *ForumRepository) UpdatePost(post *model.ForumPost) error {
	return r.DB.Save(post).Error
}

func (r *ForumRepository) DeletePost(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.ForumComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.ForumLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ForumPost{}, "id = ?", id).Error
	})
}

func (r *ForumRepository) IncrementViews(id string) error {
	return r.DB.Model(&model.ForumPost{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *ForumRepository) CreateComment(comment *model.ForumComment) error {
	return r.DB.Create(comment).Error
}

func (r *ForumRepository) FindComment(id string) (*model.ForumComment, error) {
	var comment model.ForumComment
	err := r.DB.First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *ForumRepository) DeleteComment(id string) error {
	return r.DB.Delete(&model.ForumComment{}, "id = ?", id).Error
}

func (r *ForumRepository) FindLike(userID uint, postID string) (*model.ForumLike, error) {
	var like model.ForumLike
	err := r.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}
