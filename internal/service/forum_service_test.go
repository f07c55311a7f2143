package service

import (
	"testing"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/repository"
	"cryptoseven_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestForumService(db *gorm.DB) *ForumService {
	return NewForumService(
		repository.NewForumRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
}

func TestCreateAndListPosts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	user := seedUser(t, db, "alice", model.Noobies)

	post, err := svc.CreatePost(user.ID, PostInput{
		Title:    "SQL 注入求助",
		Content:  "union select 一直报错",
		Category: "web",
		Tags:     []string{"sqli", "入门"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "alice", post.AuthorName)

	_, err = svc.CreatePost(user.ID, PostInput{Title: "另一个帖子", Content: "x", Category: "misc"})
	require.NoError(t, err)

	posts, total, err := svc.ListPosts("", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, posts, 2)

	webOnly, total, err := svc.ListPosts("web", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, webOnly, 1)
	assert.Equal(t, post.ID, webOnly[0].ID)
}

func TestToggleLike(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := seedUser(t, db, "alice", model.Noobies)
	fan := seedUser(t, db, "bob", model.Noobies)

	post, err := svc.CreatePost(author.ID, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	liked, count, err := svc.ToggleLike(post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	// 再点一次取消
	liked, count, err = svc.ToggleLike(post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	var fresh model.ForumPost
	require.NoError(t, db.First(&fresh, "id = ?", post.ID).Error)
	assert.Equal(t, 0, fresh.LikeCount)

	var likes int64
	require.NoError(t, db.Model(&model.ForumLike{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestGetPostLikedFlag(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := seedUser(t, db, "alice", model.Noobies)
	fan := seedUser(t, db, "bob", model.Noobies)

	post, err := svc.CreatePost(author.ID, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, _, err = svc.ToggleLike(post.ID, fan.ID)
	require.NoError(t, err)

	detail, err := svc.GetPost(post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, detail.Liked)

	detail, err = svc.GetPost(post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, detail.Liked)

	_, err = svc.GetPost("missing-id", fan.ID)
	assert.ErrorIs(t, err, util.ErrPostNotFound)
}

func TestComments(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := seedUser(t, db, "alice", model.Noobies)
	other := seedUser(t, db, "bob", model.Noobies)

	post, err := svc.CreatePost(author.ID, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	comment, err := svc.CreateComment(post.ID, other.ID, CommentInput{Content: "顶一下"})
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.AuthorName)

	// 非作者非 admin 删不掉
	err = svc.DeleteComment(comment.ID, author.ID, model.Noobies)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// admin 可以删
	require.NoError(t, svc.DeleteComment(comment.ID, author.ID, model.Admin))
}

func TestDeletePostCascades(t *testing.T) {
	db := newTestDB(t)
	svc := newTestForumService(db)
	author := seedUser(t, db, "alice", model.Noobies)
	fan := seedUser(t, db, "bob", model.Noobies)

	post, err := svc.CreatePost(author.ID, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = svc.CreateComment(post.ID, fan.ID, CommentInput{Content: "沙发"})
	require.NoError(t, err)
	_, _, err = svc.ToggleLike(post.ID, fan.ID)
	require.NoError(t, err)

	// 路人删不掉
	err = svc.DeletePost(post.ID, fan.ID, model.Noobies)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	require.NoError(t, svc.DeletePost(post.ID, author.ID, model.Noobies))

	var comments, likes int64
	require.NoError(t, db.Model(&model.ForumComment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	require.NoError(t, db.Model(&model.ForumLike{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
}
