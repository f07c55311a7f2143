package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ForumService 社区帖子、评论与点赞
type ForumService struct {
	ForumRepo *repository.ForumRepository
	UserRepo  *repository.UserRepository
	Redis     *redis.Client
}

func NewForumService(
	forumRepo *repository.ForumRepository,
	userRepo *repository.UserRepository,
	redisClient *redis.Client,
) *ForumService {
	return &ForumService{
		ForumRepo: forumRepo,
		UserRepo:  userRepo,
		Redis:     redisClient,
	}
}

type PostInput struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

func (s *ForumService) CreatePost(userID uint, input PostInput) (*model.ForumPost, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	post := &model.ForumPost{
		AuthorID:     user.ID,
		AuthorName:   user.Username,
		AuthorAvatar: user.AvatarPicture,
		Title:        input.Title,
		Content:      input.Content,
		Category:     input.Category,
		Tags:         input.Tags,
	}
	if err := s.ForumRepo.CreatePost(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ForumService) ListPosts(category string, page, pageSize int) ([]model.ForumPost, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.ForumRepo.FindPosts(category, page, pageSize)
}

// PostDetail 帖子详情，附带当前用户是否点过赞
type PostDetail struct {
	model.ForumPost
	Liked bool `json:"liked"`
}

// GetPost 读详情；已登录用户 10 分钟内重复访问不重复计阅读量
func (s *ForumService) GetPost(id string, viewerID uint) (*PostDetail, error) {
	post, err := s.ForumRepo.FindPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}

	countView := true
	if viewerID != 0 && s.Redis != nil {
		viewKey := fmt.Sprintf("forum:view:%s:%d", id, viewerID)
		isNewVisit, _ := s.Redis.SetNX(context.Background(), viewKey, "1", 10*time.Minute).Result()
		countView = isNewVisit
	}
	if countView {
		// 异步增加阅读量
		go func(pid string) {
			s.ForumRepo.IncrementViews(pid)
		}(post.ID)
		post.Views++
	}

	detail := &PostDetail{ForumPost: *post}
	if viewerID != 0 {
		if _, err := s.ForumRepo.FindLike(viewerID, id); err == nil {
			detail.Liked = true
		}
	}
	return detail, nil
}

// DeletePost 作者本人或 admin 可删，连带评论与点赞
func (s *ForumService) DeletePost(id string, userID uint, role model.UserRole) error {
	post, err := s.ForumRepo.FindPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPostNotFound
		}
		return err
	}
	if post.AuthorID != userID && role != model.Admin {
		return util.ErrPermissionDenied
	}
	return s.ForumRepo.DeletePost(id)
}

type CommentInput struct {
	Content string `json:"content" binding:"required"`
}

func (s *ForumService) CreateComment(postID string, userID uint, input CommentInput) (*model.ForumComment, error) {
	if _, err := s.ForumRepo.FindPostByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPostNotFound
		}
		return nil, err
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	comment := &model.ForumComment{
		PostID:       postID,
		AuthorID:     user.ID,
		AuthorName:   user.Username,
		AuthorAvatar: user.AvatarPicture,
		Content:      input.Content,
	}
	if err := s.ForumRepo.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ForumService) DeleteComment(id string, userID uint, role model.UserRole) error {
	comment, err := s.ForumRepo.FindComment(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPostNotFound
		}
		return err
	}
	if comment.AuthorID != userID && role != model.Admin {
		return util.ErrPermissionDenied
	}
	return s.ForumRepo.DeleteComment(id)
}

// ToggleLike 点赞开关：没点过则插入点赞行并 +1，点过则删除并 -1，
// 点赞行与计数在同一事务内更新。返回最新点赞态。
func (s *ForumService) ToggleLike(postID string, userID uint) (liked bool, likeCount int, err error) {
	post, err := s.ForumRepo.FindPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, util.ErrPostNotFound
		}
		return false, 0, err
	}

	_, findErr := s.ForumRepo.FindLike(userID, postID)
	hasLiked := findErr == nil
	if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return false, 0, findErr
	}

	err = s.ForumRepo.DB.Transaction(func(tx *gorm.DB) error {
		if hasLiked {
			if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
				Delete(&model.ForumLike{}).Error; err != nil {
				return err
			}
			return tx.Model(&model.ForumPost{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}
		if err := tx.Create(&model.ForumLike{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		return tx.Model(&model.ForumPost{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		return false, 0, err
	}

	if hasLiked {
		return false, post.LikeCount - 1, nil
	}
	return true, post.LikeCount + 1, nil
}
