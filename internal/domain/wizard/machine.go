package wizard

import (
	"strconv"
	"strings"
	"time"

	"github.com/ficben/achievebot/internal/domain/achievement"
	"github.com/ficben/achievebot/internal/domain/member"
)

// ══════════════════════════════════════════════════════════════════════════════
// MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// Machine проводит сессии мастера через разрешённые переходы. Авторизация
// оператора проверяется на каждом переходе, не только на входе: при отказе
// сессия не меняется. Каталог ачивок может отсутствовать - ветка выдачи
// ачивок тогда завершается ошибкой, ветка книг продолжает работать.
type Machine struct {
	admins  map[int64]struct{}
	catalog *achievement.Catalog
	now     func() time.Time
}

// NewMachine создаёт автомат мастера с фиксированным списком
// администраторов. catalog может быть nil.
func NewMachine(adminIDs []int64, catalog *achievement.Catalog) *Machine {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Machine{admins: admins, catalog: catalog, now: time.Now}
}

// IsAdmin сообщает, входит ли оператор в список администраторов.
func (mc *Machine) IsAdmin(operatorID int64) bool {
	_, ok := mc.admins[operatorID]
	return ok
}

// Authorize возвращает ErrUnauthorized для не-администратора.
func (mc *Machine) Authorize(operatorID int64) error {
	if !mc.IsAdmin(operatorID) {
		return ErrUnauthorized
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// Start начинает поток мастера: любая прежняя сессия оператора
// отбрасывается, список участников снимается снапшотом, курсор - на первой
// странице. Для ветки ачивок каталог обязан быть загружен.
func (mc *Machine) Start(operatorID int64, mode Mode, members []member.ListEntry) (*Session, error) {
	if err := mc.Authorize(operatorID); err != nil {
		return nil, err
	}
	if mode == ModeGiveAchievement && (mc.catalog == nil || mc.catalog.Size() == 0) {
		return nil, achievement.ErrCatalogNotLoaded
	}
	snapshot := make([]SnapshotEntry, 0, len(members))
	for _, entry := range members {
		snapshot = append(snapshot, SnapshotEntry{ID: entry.ID.Int64(), Handle: string(entry.Handle)})
	}
	return &Session{
		OperatorID: operatorID,
		Step:       StepChoosingMember,
		Mode:       mode,
		Members:    snapshot,
		StartedAt:  mc.now(),
	}, nil
}

// PageMembers перелистывает список участников. Курсор зажимается в
// допустимые границы, шаг не меняется.
func (mc *Machine) PageMembers(s *Session, operatorID int64, page int) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil || s.Step != StepChoosingMember {
		return ErrWrongStep
	}
	s.MembersPage = clampPage(page, s.MembersPageInfo())
	return nil
}

// SelectMember фиксирует выбранного участника и переводит сессию на
// следующий шаг ветки: ввод количества для книг, выбор категории для
// ачивок. Снапшот категорий берётся в этот момент.
func (mc *Machine) SelectMember(s *Session, operatorID int64, id member.ID) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil || s.Step != StepChoosingMember {
		return ErrWrongStep
	}
	if !id.IsValid() {
		return member.ErrInvalidID
	}
	s.SelectedMember = id.Int64()
	switch s.Mode {
	case ModeGiveAchievement:
		if mc.catalog == nil || mc.catalog.Size() == 0 {
			return achievement.ErrCatalogNotLoaded
		}
		s.Categories = mc.catalog.Categories()
		s.CategoriesPage = 0
		s.Step = StepChoosingCategory
	default:
		s.Step = StepSettingAmount
	}
	return nil
}

// SubmitAmount принимает текстовый ввод количества книг. Невалидный ввод
// оставляет сессию на том же шаге. Валидный завершает поток: сессия
// возвращается в Idle, а разобранные участник и количество отдаются
// вызывающему для записи.
func (mc *Machine) SubmitAmount(s *Session, operatorID int64, text string) (member.ID, int, error) {
	if err := mc.Authorize(operatorID); err != nil {
		return 0, 0, err
	}
	if s == nil || s.Step != StepSettingAmount {
		return 0, 0, ErrWrongStep
	}
	amount, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || amount < 0 {
		return 0, 0, ErrInvalidAmount
	}
	id := s.SelectedMemberID()
	s.reset()
	return id, amount, nil
}

// PageCategories перелистывает список категорий.
func (mc *Machine) PageCategories(s *Session, operatorID int64, page int) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil || s.Step != StepChoosingCategory {
		return ErrWrongStep
	}
	s.CategoriesPage = clampPage(page, s.CategoriesPageInfo())
	return nil
}

// SelectCategory фиксирует категорию по индексу в снапшоте и переводит
// сессию к выбору ачивки.
func (mc *Machine) SelectCategory(s *Session, operatorID int64, index int) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil || s.Step != StepChoosingCategory {
		return ErrWrongStep
	}
	if index < 0 || index >= len(s.Categories) {
		return achievement.ErrUnknownCategory
	}
	s.SelectedCategory = s.Categories[index]
	s.AchievementsPage = 0
	s.Step = StepChoosingAchievement
	return nil
}

// AchievementsPageInfo возвращает параметры пагинации ачивок выбранной
// категории.
func (mc *Machine) AchievementsPageInfo(s *Session) PageInfo {
	total := 0
	if mc.catalog != nil {
		total = len(mc.catalog.ByCategory(s.SelectedCategory))
	}
	return PageInfo{Page: s.AchievementsPage, PerPage: AchievementsPerPage, Total: total}
}

// AchievementsOnPage возвращает ачивки текущей страницы выбранной
// категории.
func (mc *Machine) AchievementsOnPage(s *Session) []achievement.Definition {
	if mc.catalog == nil {
		return nil
	}
	items := mc.catalog.ByCategory(s.SelectedCategory)
	start, end := mc.AchievementsPageInfo(s).Bounds()
	return items[start:end]
}

// PageAchievements перелистывает ачивки внутри категории.
func (mc *Machine) PageAchievements(s *Session, operatorID int64, page int) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil || s.Step != StepChoosingAchievement {
		return ErrWrongStep
	}
	s.AchievementsPage = clampPage(page, mc.AchievementsPageInfo(s))
	return nil
}

// Pick завершает ветку выдачи: сессия возвращается в Idle, участник и код
// ачивки отдаются вызывающему для записи в леджер.
func (mc *Machine) Pick(s *Session, operatorID int64, code string) (member.ID, string, error) {
	if err := mc.Authorize(operatorID); err != nil {
		return 0, "", err
	}
	if s == nil || s.Step != StepChoosingAchievement {
		return 0, "", ErrWrongStep
	}
	if mc.catalog == nil {
		return 0, "", achievement.ErrCatalogNotLoaded
	}
	if _, ok := mc.catalog.ByCode(code); !ok {
		return 0, "", achievement.ErrUnknownCode
	}
	id := s.SelectedMemberID()
	s.reset()
	return id, code, nil
}

// BackToMembers возвращает сессию из выбора категории к списку участников.
// Курсор списка участников сохраняется.
func (mc *Machine) BackToMembers(s *Session, operatorID int64) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil || s.Step != StepChoosingCategory {
		return ErrWrongStep
	}
	s.SelectedMember = 0
	s.SelectedCategory = ""
	s.Step = StepChoosingMember
	return nil
}

// BackToCategories возвращает сессию из выбора ачивки к списку категорий.
// Курсор списка категорий сохраняется.
func (mc *Machine) BackToCategories(s *Session, operatorID int64) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil || s.Step != StepChoosingAchievement {
		return ErrWrongStep
	}
	s.SelectedCategory = ""
	s.AchievementsPage = 0
	s.Step = StepChoosingCategory
	return nil
}

// Cancel прерывает поток из любого шага, возвращая сессию в Idle.
func (mc *Machine) Cancel(s *Session, operatorID int64) error {
	if err := mc.Authorize(operatorID); err != nil {
		return err
	}
	if s == nil {
		return ErrNoSession
	}
	s.reset()
	return nil
}

func clampPage(page int, info PageInfo) int {
	if page < 0 {
		return 0
	}
	if last := info.Pages() - 1; page > last {
		return last
	}
	return page
}
