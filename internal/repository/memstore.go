package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

// MemoryStore is an in-memory domain.Store used by tests and the local
// development mode (DB_DRIVER=memory). Operations are serialized by a single
// mutex; InTx provides no rollback, matching its single-process use.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*domain.Account
	issues   map[int64]*domain.Issue
	comments map[int64]*domain.Comment
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: map[int64]*domain.Account{},
		issues:   map[int64]*domain.Issue{},
		comments: map[int64]*domain.Comment{},
	}
}

func (s *MemoryStore) Accounts() domain.AccountRepository { return &memAccounts{s} }
func (s *MemoryStore) Issues() domain.IssueRepository     { return &memIssues{s} }
func (s *MemoryStore) Comments() domain.CommentRepository { return &memComments{s} }

func (s *MemoryStore) InTx(ctx context.Context, fn func(domain.Store) error) error {
	return fn(s)
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func cloneIssue(i *domain.Issue) *domain.Issue {
	cp := *i
	if i.Description != nil {
		d := *i.Description
		cp.Description = &d
	}
	cp.Author = cloneAccount(i.Author)
	cp.Assignee = cloneAccount(i.Assignee)
	return &cp
}

func cloneComment(c *domain.Comment) *domain.Comment {
	cp := *c
	cp.Author = cloneAccount(c.Author)
	return &cp
}

func paginate[T any](items []T, page pagination.Request) ([]T, int64) {
	total := int64(len(items))
	start := page.Offset()
	if start >= len(items) {
		return nil, total
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total
}

type memAccounts struct{ s *MemoryStore }

func (m *memAccounts) Create(ctx context.Context, account *domain.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.accounts {
		if a.Email == account.Email {
			return domain.Duplicate("Account already exists")
		}
	}
	account.ID = m.s.id()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.s.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (m *memAccounts) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if a, ok := m.s.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.NotFound("Account not found")
}

func (m *memAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.NotFound("Account not found")
}

func (m *memAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) Update(ctx context.Context, account *domain.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.accounts[account.ID]; !ok {
		return domain.NotFound("Account not found")
	}
	for id, a := range m.s.accounts {
		if id != account.ID && a.Email == account.Email {
			return domain.Duplicate("Account already exists")
		}
	}
	account.UpdatedAt = time.Now()
	m.s.accounts[account.ID] = cloneAccount(account)
	// keep embedded author/assignee projections in sync
	for _, i := range m.s.issues {
		if i.Author.ID == account.ID {
			i.Author = cloneAccount(account)
		}
		if i.Assignee != nil && i.Assignee.ID == account.ID {
			i.Assignee = cloneAccount(account)
		}
	}
	for _, c := range m.s.comments {
		if c.Author.ID == account.ID {
			c.Author = cloneAccount(account)
		}
	}
	return nil
}

func (m *memAccounts) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.accounts[id]; !ok {
		return domain.NotFound("Account not found")
	}
	delete(m.s.accounts, id)
	return nil
}

func (m *memAccounts) List(ctx context.Context, page pagination.Request) (*pagination.Page[*domain.Account], error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := make([]*domain.Account, 0, len(m.s.accounts))
	for _, a := range m.s.accounts {
		all = append(all, cloneAccount(a))
	}
	sort.Slice(all, func(i, j int) bool {
		if page.Desc {
			return all[i].ID > all[j].ID
		}
		return all[i].ID < all[j].ID
	})
	content, total := paginate(all, page)
	return pagination.NewPage(content, page, total), nil
}

type memIssues struct{ s *MemoryStore }

func (m *memIssues) Create(ctx context.Context, issue *domain.Issue) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	issue.ID = m.s.id()
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	m.s.issues[issue.ID] = cloneIssue(issue)
	return nil
}

func (m *memIssues) GetByID(ctx context.Context, id int64) (*domain.Issue, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if i, ok := m.s.issues[id]; ok {
		return cloneIssue(i), nil
	}
	return nil, domain.NotFound("Issue not found")
}

func (m *memIssues) ExistsByID(ctx context.Context, id int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.issues[id]
	return ok, nil
}

func (m *memIssues) ExistsByIDAndAssigneeEmail(ctx context.Context, id int64, email string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, ok := m.s.issues[id]
	return ok && i.Assignee != nil && i.Assignee.Email == email, nil
}

func (m *memIssues) ExistsByIDAndAuthorEmail(ctx context.Context, id int64, email string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i, ok := m.s.issues[id]
	return ok && i.Author.Email == email, nil
}

func (m *memIssues) Update(ctx context.Context, issue *domain.Issue) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.issues[issue.ID]
	if !ok {
		return domain.NotFound("Issue not found")
	}
	issue.Author = cloneAccount(existing.Author)
	issue.CreatedAt = existing.CreatedAt
	issue.UpdatedAt = time.Now()
	m.s.issues[issue.ID] = cloneIssue(issue)
	return nil
}

func (m *memIssues) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.issues[id]; !ok {
		return domain.NotFound("Issue not found")
	}
	delete(m.s.issues, id)
	return nil
}

func (m *memIssues) list(page pagination.Request, match func(*domain.Issue) bool) (*pagination.Page[*domain.Issue], error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []*domain.Issue
	for _, i := range m.s.issues {
		if match(i) {
			all = append(all, cloneIssue(i))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if page.Desc {
			return all[i].ID > all[j].ID
		}
		return all[i].ID < all[j].ID
	})
	content, total := paginate(all, page)
	return pagination.NewPage(content, page, total), nil
}

func (m *memIssues) List(ctx context.Context, page pagination.Request) (*pagination.Page[*domain.Issue], error) {
	return m.list(page, func(*domain.Issue) bool { return true })
}

func (m *memIssues) ListByAuthor(ctx context.Context, authorID int64, page pagination.Request) (*pagination.Page[*domain.Issue], error) {
	return m.list(page, func(i *domain.Issue) bool { return i.Author.ID == authorID })
}

func (m *memIssues) ListByAssignee(ctx context.Context, assigneeID int64, page pagination.Request) (*pagination.Page[*domain.Issue], error) {
	return m.list(page, func(i *domain.Issue) bool { return i.Assignee != nil && i.Assignee.ID == assigneeID })
}

func (m *memIssues) DeleteByAuthor(ctx context.Context, authorID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, i := range m.s.issues {
		if i.Author.ID == authorID {
			delete(m.s.issues, id)
		}
	}
	return nil
}

func (m *memIssues) ClearAssignee(ctx context.Context, assigneeID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, i := range m.s.issues {
		if i.Assignee != nil && i.Assignee.ID == assigneeID {
			i.Assignee = nil
		}
	}
	return nil
}

type memComments struct{ s *MemoryStore }

func (m *memComments) Create(ctx context.Context, comment *domain.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	comment.ID = m.s.id()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	m.s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (m *memComments) GetByIDAndIssue(ctx context.Context, id, issueID int64) (*domain.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.comments[id]; ok && c.IssueID == issueID {
		return cloneComment(c), nil
	}
	return nil, domain.NotFound("Comment not found")
}

func (m *memComments) ExistsByIDAndIssue(ctx context.Context, id, issueID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.comments[id]
	return ok && c.IssueID == issueID, nil
}

func (m *memComments) ExistsByIDAndAuthorEmail(ctx context.Context, id int64, email string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.comments[id]
	return ok && c.Author.Email == email, nil
}

func (m *memComments) Update(ctx context.Context, comment *domain.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.comments[comment.ID]
	if !ok {
		return domain.NotFound("Comment not found")
	}
	existing.Content = comment.Content
	existing.UpdatedAt = time.Now()
	comment.UpdatedAt = existing.UpdatedAt
	return nil
}

func (m *memComments) DeleteByIDAndIssue(ctx context.Context, id, issueID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.comments[id]; ok && c.IssueID == issueID {
		delete(m.s.comments, id)
		return nil
	}
	return domain.NotFound("Comment not found")
}

func (m *memComments) DeleteByIssue(ctx context.Context, issueID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, c := range m.s.comments {
		if c.IssueID == issueID {
			delete(m.s.comments, id)
		}
	}
	return nil
}

func (m *memComments) DeleteByAuthor(ctx context.Context, authorID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, c := range m.s.comments {
		if c.Author.ID == authorID {
			delete(m.s.comments, id)
		}
	}
	return nil
}

func (m *memComments) DeleteByIssueAuthor(ctx context.Context, authorID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, c := range m.s.comments {
		if i, ok := m.s.issues[c.IssueID]; ok && i.Author.ID == authorID {
			delete(m.s.comments, id)
		}
	}
	return nil
}

func (m *memComments) ListByIssue(ctx context.Context, issueID int64, page pagination.Request) (*pagination.Page[*domain.Comment], error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []*domain.Comment
	for _, c := range m.s.comments {
		if c.IssueID == issueID {
			all = append(all, cloneComment(c))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if page.Desc {
			return all[i].ID > all[j].ID
		}
		return all[i].ID < all[j].ID
	})
	content, total := paginate(all, page)
	return pagination.NewPage(content, page, total), nil
}
