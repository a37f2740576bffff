package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classifieds/internal/db"
	"classifieds/models"
)

func openRepos(t *testing.T) (*Store, *Repositories) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	h, err := db.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return NewStore(h), New(h.Querier())
}

func seedUser(t *testing.T, r *Repositories, name string) *models.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), &models.User{Username: name, Email: name + "@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	return u
}

func TestUserRepository_CRUDAndQueries(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()

	u := seedUser(t, r, "alice")
	require.NotZero(t, u.ID)

	g, err := r.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "alice@x.com", g.Email)
	assert.False(t, g.IsSuperuser)

	g2, err := r.Users.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, g2.ID)

	g3, err := r.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, g3.ID)

	missing, err := r.Users.GetByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := r.Users.UpdateFields(ctx, u.ID, Set(UserIsBanned, true), Set(UserIsModerator, true))
	require.NoError(t, err)
	assert.True(t, ok)
	g, _ = r.Users.GetByID(ctx, u.ID)
	assert.True(t, g.IsBanned)
	assert.True(t, g.IsModerator)

	ok, err = r.Users.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	gone, err := r.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	ok, err = r.Users.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_DuplicateEmailAndUsername(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	seedUser(t, r, "alice")

	_, err := r.Users.Create(ctx, &models.User{Username: "other", Email: "alice@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = r.Users.Create(ctx, &models.User{Username: "alice", Email: "other@x.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUpdateFields_RejectsProtectedColumns(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	u := seedUser(t, r, "bob")

	for _, field := range []string{"id", "email", "hashed_password", "username", "is_banned = 1; --"} {
		_, err := r.Users.UpdateFields(ctx, u.ID, Set(field, "x"))
		assert.ErrorIs(t, err, ErrFieldNotMutable, field)
	}
	// A rejected field aborts the whole update.
	_, err := r.Users.UpdateFields(ctx, u.ID, Set(UserIsBanned, true), Set("email", "evil@x.com"))
	assert.ErrorIs(t, err, ErrFieldNotMutable)
	g, _ := r.Users.GetByID(ctx, u.ID)
	assert.False(t, g.IsBanned)
	assert.Equal(t, "bob@x.com", g.Email)

	ok, err := r.Users.UpdateFields(ctx, 9999, Set(UserIsBanned, true))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPagination_StableAndNonOverlapping(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := r.Categories.Create(ctx, "cat"+string(rune('a'+i)))
		require.NoError(t, err)
	}
	p1, err := r.Categories.List(ctx, Page{Number: 1, Size: 3})
	require.NoError(t, err)
	p2, err := r.Categories.List(ctx, Page{Number: 2, Size: 3})
	require.NoError(t, err)
	p3, err := r.Categories.List(ctx, Page{Number: 3, Size: 3})
	require.NoError(t, err)
	p4, err := r.Categories.List(ctx, Page{Number: 4, Size: 3})
	require.NoError(t, err)

	require.Len(t, p1, 3)
	require.Len(t, p2, 3)
	require.Len(t, p3, 1)
	assert.Empty(t, p4)

	var ids []int64
	for _, page := range [][]models.Category{p1, p2, p3} {
		for _, c := range page {
			ids = append(ids, c.ID)
		}
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestPage_LimitOffset(t *testing.T) {
	l, o := Page{Number: 3, Size: 10}.limitOffset()
	assert.Equal(t, 10, l)
	assert.Equal(t, 20, o)

	l, o = Page{Number: 0, Size: 0}.limitOffset()
	assert.Equal(t, DefaultPageSize, l)
	assert.Equal(t, 0, o)

	l, o = Page{Number: 2, Size: 150}.limitOffset()
	assert.Equal(t, 150, l)
	assert.Equal(t, 150, o)
}

func TestCategoryRepository_DuplicateName(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	_, err := r.Categories.Create(ctx, "cars")
	require.NoError(t, err)
	_, err = r.Categories.Create(ctx, "cars")
	assert.ErrorIs(t, err, ErrDuplicate)

	c, err := r.Categories.GetByName(ctx, "cars")
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestAdvertisementRepository_MissingReference(t *testing.T) {
	_, r := openRepos(t)
	u := seedUser(t, r, "carol")
	_, err := r.Adverts.Create(context.Background(), &models.Advertisement{Title: "t", UserID: u.ID, CategoryID: 404})
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestAdvertisementRepository_ListsAndMove(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	u := seedUser(t, r, "dave")
	cars, _ := r.Categories.Create(ctx, "cars")
	boats, _ := r.Categories.Create(ctx, "boats")

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a, err := r.Adverts.Create(ctx, &models.Advertisement{Title: "sedan", Description: "d", CreatedAt: created, UserID: u.ID, CategoryID: cars.ID})
	require.NoError(t, err)
	_, err = r.Adverts.Create(ctx, &models.Advertisement{Title: "yacht", UserID: u.ID, CategoryID: boats.ID})
	require.NoError(t, err)

	got, err := r.Adverts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt), "created_at round trip: %v", got.CreatedAt)

	inCars, err := r.Adverts.ListByCategory(ctx, cars.ID, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, inCars, 1)
	assert.Equal(t, "sedan", inCars[0].Title)

	mine, err := r.Adverts.ListByUser(ctx, u.ID, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	ok, err := r.Adverts.UpdateFields(ctx, a.ID, Set(AdvertCategoryID, boats.ID))
	require.NoError(t, err)
	assert.True(t, ok)
	inBoats, err := r.Adverts.ListByCategory(ctx, boats.ID, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, inBoats, 2)

	_, err = r.Adverts.UpdateFields(ctx, a.ID, Set("user_id", int64(1)))
	assert.ErrorIs(t, err, ErrFieldNotMutable)
}

func TestCategoryDelete_Cascades(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	owner := seedUser(t, r, "erin")
	reporter := seedUser(t, r, "frank")
	cat, _ := r.Categories.Create(ctx, "pets")
	a, err := r.Adverts.Create(ctx, &models.Advertisement{Title: "puppy", UserID: owner.ID, CategoryID: cat.ID})
	require.NoError(t, err)
	c, err := r.Comments.Create(ctx, &models.Comment{Content: "cute", UserID: reporter.ID, AdvertisementID: a.ID})
	require.NoError(t, err)
	rep, err := r.Reports.Create(ctx, &models.Report{Title: "spam", Content: "x", CreatorID: reporter.ID, SubjectID: owner.ID, AdvertisementID: a.ID})
	require.NoError(t, err)

	ok, err := r.Categories.Delete(ctx, cat.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ga, _ := r.Adverts.GetByID(ctx, a.ID)
	gc, _ := r.Comments.GetByID(ctx, c.ID)
	gr, _ := r.Reports.GetByID(ctx, rep.ID)
	assert.Nil(t, ga)
	assert.Nil(t, gc)
	assert.Nil(t, gr)
}

func TestUserDelete_CascadesOwnedRows(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	owner := seedUser(t, r, "gina")
	cat, _ := r.Categories.Create(ctx, "tools")
	a, _ := r.Adverts.Create(ctx, &models.Advertisement{Title: "drill", UserID: owner.ID, CategoryID: cat.ID})

	_, err := r.Users.Delete(ctx, owner.ID)
	require.NoError(t, err)
	ga, _ := r.Adverts.GetByID(ctx, a.ID)
	assert.Nil(t, ga)
	gc, _ := r.Categories.GetByID(ctx, cat.ID)
	assert.NotNil(t, gc)
}

func TestReportRepository_NewestFirst(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	owner := seedUser(t, r, "hank")
	reporter := seedUser(t, r, "iris")
	cat, _ := r.Categories.Create(ctx, "misc")
	a, _ := r.Adverts.Create(ctx, &models.Advertisement{Title: "lamp", UserID: owner.ID, CategoryID: cat.ID})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		rep, err := r.Reports.Create(ctx, &models.Report{
			Title: "r", Content: "c", CreatedAt: base.Add(time.Duration(i) * time.Hour),
			CreatorID: reporter.ID, SubjectID: owner.ID, AdvertisementID: a.ID,
		})
		require.NoError(t, err)
		ids = append(ids, rep.ID)
	}
	list, err := r.Reports.List(ctx, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
	for _, rep := range list {
		assert.Equal(t, a.ID, rep.AdvertisementID)
	}
}

func TestCommentRepository_ListByAdvertisement(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()
	u := seedUser(t, r, "jack")
	cat, _ := r.Categories.Create(ctx, "books")
	a1, _ := r.Adverts.Create(ctx, &models.Advertisement{Title: "novel", UserID: u.ID, CategoryID: cat.ID})
	a2, _ := r.Adverts.Create(ctx, &models.Advertisement{Title: "atlas", UserID: u.ID, CategoryID: cat.ID})
	for i := 0; i < 3; i++ {
		_, err := r.Comments.Create(ctx, &models.Comment{Content: "c", UserID: u.ID, AdvertisementID: a1.ID})
		require.NoError(t, err)
	}
	_, err := r.Comments.Create(ctx, &models.Comment{Content: "other", UserID: u.ID, AdvertisementID: a2.ID})
	require.NoError(t, err)

	list, err := r.Comments.ListByAdvertisement(ctx, a1.ID, Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	list, err = r.Comments.ListByAdvertisement(ctx, a1.ID, Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = r.Comments.Create(ctx, &models.Comment{Content: "x", UserID: u.ID, AdvertisementID: 999})
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestSuperuserEmailRepository(t *testing.T) {
	_, r := openRepos(t)
	ctx := context.Background()

	_, err := r.Allowlist.Add(ctx, "root@x.com")
	require.NoError(t, err)
	_, err = r.Allowlist.Add(ctx, "root@x.com")
	assert.ErrorIs(t, err, ErrDuplicate)

	ok, err := r.Allowlist.Contains(ctx, "root@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := r.Allowlist.List(ctx, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ok, err = r.Allowlist.DeleteByEmail(ctx, "root@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Allowlist.DeleteByEmail(ctx, "root@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_DoRollsBackOnError(t *testing.T) {
	s, _ := openRepos(t)
	ctx := context.Background()

	err := s.Do(ctx, func(r *Repositories) error {
		if _, err := r.Categories.Create(ctx, "temp"); err != nil {
			return err
		}
		_, err := r.Categories.Create(ctx, "temp")
		return err
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = s.Do(ctx, func(r *Repositories) error {
		c, err := r.Categories.GetByName(ctx, "temp")
		require.NoError(t, err)
		assert.Nil(t, c)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
}
