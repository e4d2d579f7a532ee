package callback

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/application/command"
	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
	"github.com/ficben/achievebot/internal/domain/rank"
	"github.com/ficben/achievebot/internal/domain/shared"
	"github.com/ficben/achievebot/internal/domain/wizard"
	"github.com/ficben/achievebot/internal/infrastructure/persistence/memory"
	"github.com/ficben/achievebot/internal/interface/telegram/presenter"
)

// ─────────────────────────────────────────────────────────────────────────────
// FAKES
// ─────────────────────────────────────────────────────────────────────────────

type fakeMemberRepo struct {
	members map[member.ID]*member.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[member.ID]*member.Member)}
}

func (r *fakeMemberRepo) Register(_ context.Context, id member.ID, handle member.Handle) error {
	if _, ok := r.members[id]; ok {
		return nil
	}
	m, err := member.New(id, handle, time.Now().UTC())
	if err != nil {
		return err
	}
	m.ApplyRanks(rank.SentinelMessages, rank.SentinelComments, rank.SentinelCombined)
	r.members[id] = m
	return nil
}

func (r *fakeMemberRepo) GetByID(_ context.Context, id member.ID) (*member.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, member.ErrNotRegistered
	}
	return m.Clone(), nil
}

func (r *fakeMemberRepo) GetAll(_ context.Context) ([]member.ListEntry, error) {
	entries := make([]member.ListEntry, 0, len(r.members))
	for _, m := range r.members {
		entries = append(entries, member.ListEntry{ID: m.ID, Handle: m.Handle})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Handle < entries[j].Handle })
	return entries, nil
}

func (r *fakeMemberRepo) Increment(_ context.Context, id member.ID, isComment bool) (int, int, error) {
	m, ok := r.members[id]
	if !ok {
		return 0, 0, member.ErrNotRegistered
	}
	m.RecordMessage(isComment)
	return m.Messages, m.Comments, nil
}

func (r *fakeMemberRepo) SetBooks(_ context.Context, id member.ID, count int) error {
	m, ok := r.members[id]
	if !ok {
		return member.ErrNotRegistered
	}
	return m.SetBooks(count)
}

func (r *fakeMemberRepo) UpdateRanks(_ context.Context, id member.ID, messages, comments, combined string) error {
	m, ok := r.members[id]
	if !ok {
		return member.ErrNotRegistered
	}
	m.ApplyRanks(messages, comments, combined)
	return nil
}

func (r *fakeMemberRepo) GetRecentActivity(_ context.Context, _ member.ID, _ int) ([]member.DailyActivity, error) {
	return nil, nil
}

type fakeLedger struct {
	awards map[member.ID][]string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{awards: make(map[member.ID][]string)}
}

func (l *fakeLedger) Award(_ context.Context, id member.ID, code string) error {
	for _, held := range l.awards[id] {
		if held == code {
			return nil
		}
	}
	l.awards[id] = append(l.awards[id], code)
	return nil
}

func (l *fakeLedger) Has(_ context.Context, id member.ID, code string) (bool, error) {
	for _, held := range l.awards[id] {
		if held == code {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) ListByMember(_ context.Context, id member.ID) ([]string, error) {
	return append([]string(nil), l.awards[id]...), nil
}

type fakePublisher struct{}

func (p *fakePublisher) Publish(shared.Event) error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// FIXTURE
// ─────────────────────────────────────────────────────────────────────────────

const adminID = int64(42)

type wizardFixture struct {
	handler *WizardHandler
	store   wizard.SessionStore
	repo    *fakeMemberRepo
	ledger  *fakeLedger
}

func newWizardFixture(t *testing.T, catalog *achievement.Catalog) *wizardFixture {
	t.Helper()

	repo := newFakeMemberRepo()
	require.NoError(t, repo.Register(context.Background(), 100, "alice"))
	require.NoError(t, repo.Register(context.Background(), 200, "bob"))

	ledger := newFakeLedger()
	pub := &fakePublisher{}
	machine := wizard.NewMachine([]int64{adminID}, catalog)
	store := memory.NewSessionStore(time.Minute)

	setBooks := command.NewSetBooksCountHandler(repo, achievement.NewAutoEvaluator(ledger), pub)
	grant := command.NewGrantAchievementHandler(repo, ledger, catalog, pub)

	return &wizardFixture{
		handler: NewWizardHandler(machine, store, repo, setBooks, grant, presenter.NewKeyboardBuilder()),
		store:   store,
		repo:    repo,
		ledger:  ledger,
	}
}

func wizardTestCatalog() *achievement.Catalog {
	return achievement.NewCatalog([]achievement.Definition{
		{Category: "Чтение", Code: "first_chapter", Title: "📖 Первая глава"},
		{Category: "Чтение", Code: "bookworm", Title: "🐛 Книжный червь"},
		{Category: "Активность", Code: "night_owl", Title: "🦉 Ночная сова"},
	})
}

func (f *wizardFixture) press(t *testing.T, data string) *WizardResponse {
	t.Helper()
	resp, err := f.handler.Handle(context.Background(), WizardRequest{
		TelegramID: adminID,
		ChatID:     1,
		MessageID:  10,
		Data:       data,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

// ─────────────────────────────────────────────────────────────────────────────
// TESTS
// ─────────────────────────────────────────────────────────────────────────────

func TestWizard_AchievementFlowEndToEnd(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	resp := f.press(t, "adm:ach")
	assert.Contains(t, resp.Text, "Выдача ачивки")
	require.NotNil(t, resp.Keyboard)
	assert.Equal(t, "adm:member:100", resp.Keyboard.Rows[0][0].CallbackData)

	resp = f.press(t, "adm:member:100")
	assert.Contains(t, resp.Text, "Выбери категорию")

	// Category index is resolved against the session snapshot;
	// "Активность" is the second category of the catalog.
	resp = f.press(t, "adm:cat:1")
	assert.Contains(t, resp.Text, "Выбери ачивку")
	assert.Equal(t, "adm:pick:night_owl", resp.Keyboard.Rows[0][0].CallbackData)

	resp = f.press(t, "adm:pick:night_owl")
	assert.Contains(t, resp.Text, "Ачивка выдана")
	assert.Contains(t, resp.Text, "🦉 Ночная сова")

	held, err := f.ledger.Has(context.Background(), 100, "night_owl")
	require.NoError(t, err)
	assert.True(t, held)

	// Session is dropped after the terminal transition.
	_, err = f.store.Get(context.Background(), adminID)
	assert.ErrorIs(t, err, wizard.ErrNoSession)
}

func TestWizard_BooksFlowShowsAmountPrompt(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	resp := f.press(t, "adm:books")
	assert.Contains(t, resp.Text, "Установка книг")

	resp = f.press(t, "adm:member:200")
	assert.Contains(t, resp.Text, "Отправь число")

	s, err := f.store.Get(context.Background(), adminID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepSettingAmount, s.Step)
	assert.Equal(t, int64(200), s.SelectedMember)
}

func TestWizard_BackNavigationReturnsToPreviousList(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	f.press(t, "adm:ach")
	f.press(t, "adm:member:100")
	f.press(t, "adm:cat:0")

	resp := f.press(t, "adm:back:cats")
	assert.Contains(t, resp.Text, "Выбери категорию")

	resp = f.press(t, "adm:back:members")
	assert.Contains(t, resp.Text, "Выбери участника")
}

func TestWizard_CancelDropsSession(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	f.press(t, "adm:ach")
	resp := f.press(t, "adm:cancel")
	assert.Equal(t, "❌ Действие отменено.", resp.Text)

	_, err := f.store.Get(context.Background(), adminID)
	assert.ErrorIs(t, err, wizard.ErrNoSession)
}

func TestWizard_NonAdminGetsAlert(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	resp, err := f.handler.Handle(context.Background(), WizardRequest{
		TelegramID: 999,
		Data:       "adm:ach",
	})
	require.NoError(t, err)
	assert.Equal(t, "⛔ Только для админов", resp.Alert)
}

func TestWizard_ExpiredSessionGetsAlert(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	resp := f.press(t, "adm:member:100")
	assert.Contains(t, resp.Alert, "Сессия мастера истекла")
}

func TestWizard_StaleButtonGetsAlert(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	f.press(t, "adm:ach")

	// Picking an achievement while still choosing a member is a stale press.
	resp := f.press(t, "adm:pick:night_owl")
	assert.Contains(t, resp.Alert, "Кнопка устарела")
}

func TestWizard_AchievementModeWithoutCatalog(t *testing.T) {
	f := newWizardFixture(t, nil)

	resp := f.press(t, "adm:ach")
	assert.Equal(t, "Каталог ачивок недоступен", resp.Alert)
}

func TestWizard_PaginationStaysWithinBounds(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())
	for i := 0; i < 15; i++ {
		require.NoError(t, f.repo.Register(context.Background(), member.ID(1000+i), member.Handle(fmt.Sprintf("user%02d", i))))
	}

	resp := f.press(t, "adm:books")
	assert.Contains(t, resp.Text, "стр. 1 из 2")

	resp = f.press(t, "adm:mpage:1")
	assert.Contains(t, resp.Text, "стр. 2 из 2")

	// Out-of-range pages clamp instead of failing.
	resp = f.press(t, "adm:mpage:99")
	assert.Contains(t, resp.Text, "стр. 2 из 2")
}

func TestWizard_NoopLeavesMessageUntouched(t *testing.T) {
	f := newWizardFixture(t, wizardTestCatalog())

	resp := f.press(t, "adm:noop")
	assert.Empty(t, resp.Text)
	assert.Empty(t, resp.Alert)
}
