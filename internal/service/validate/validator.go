// Пакет validate проверяет выбор клиента против правил кардинальности позиции меню.
// Все функции чистые: подсветка неудовлетворённых групп и её сброс — политика вызывающего.
package validate

import "github.com/vladislavdragonenkov/kiosk/internal/domain"

// Result — итог проверки одного выбора.
type Result struct {
	Satisfied bool
	// UnsatisfiedOptionGroups — обязательные опционные группы без выбора, в порядке отображения.
	UnsatisfiedOptionGroups []string
	// UnsatisfiedToppingGroups — видимые топпинг-группы, нарушившие min/max, в порядке отображения.
	UnsatisfiedToppingGroups []string
}

// Check проверяет выбор против определения позиции.
// Скрытые топпинг-группы исключаются из проверки.
func Check(item *domain.MenuItem, sel domain.Selection) Result {
	res := Result{Satisfied: true}

	for _, group := range item.OptionGroups {
		if group.Required && len(sel.Options[group.ID]) == 0 {
			res.Satisfied = false
			res.UnsatisfiedOptionGroups = append(res.UnsatisfiedOptionGroups, group.ID)
		}
	}

	vis := newVisibility(item, sel)
	for _, group := range item.ToppingGroups {
		if !vis.visible(group.ID) {
			continue
		}
		if !toppingGroupSatisfied(&group, sel) {
			res.Satisfied = false
			res.UnsatisfiedToppingGroups = append(res.UnsatisfiedToppingGroups, group.ID)
		}
	}

	return res
}

// FirstUnsatisfied возвращает первую неудовлетворённую группу в порядке отображения
// (сначала опционные группы, затем топпинг-группы) для детерминированной прокрутки.
func FirstUnsatisfied(item *domain.MenuItem, sel domain.Selection) (string, bool) {
	res := Check(item, sel)
	if len(res.UnsatisfiedOptionGroups) > 0 {
		return res.UnsatisfiedOptionGroups[0], true
	}
	if len(res.UnsatisfiedToppingGroups) > 0 {
		return res.UnsatisfiedToppingGroups[0], true
	}
	return "", false
}

// VisibleToppingGroups возвращает топпинг-группы, видимые при текущем выборе,
// в исходном порядке. Используется и валидацией, и рендерингом.
func VisibleToppingGroups(item *domain.MenuItem, sel domain.Selection) []domain.ToppingGroup {
	vis := newVisibility(item, sel)
	out := make([]domain.ToppingGroup, 0, len(item.ToppingGroups))
	for _, group := range item.ToppingGroups {
		if vis.visible(group.ID) {
			out = append(out, group)
		}
	}
	return out
}

// EffectiveCount возвращает эффективное число выбранных добавок группы:
// сумму количеств для групп с повторами, иначе число выбранных идентификаторов.
func EffectiveCount(group *domain.ToppingGroup, sel domain.Selection) int {
	ids := sel.Toppings[group.ID]
	if !group.AllowMultipleSame {
		return len(ids)
	}
	total := 0
	for _, id := range ids {
		total += sel.ToppingQuantity(group.ID, id)
	}
	return total
}

func toppingGroupSatisfied(group *domain.ToppingGroup, sel domain.Selection) bool {
	count := EffectiveCount(group, sel)
	if group.MaxSelections > 0 && count > group.MaxSelections {
		return false
	}
	if !group.Required {
		return true
	}
	minRequired := group.MinSelections
	if minRequired <= 0 {
		minRequired = 1
	}
	return count >= minRequired
}

// visState — состояние узла при обходе графа зависимостей видимости.
type visState int

const (
	visUnknown visState = iota
	visEvaluating
	visVisible
	visHidden
)

// visibility лениво вычисляет видимость топпинг-групп по графу условий.
// Условия могут ссылаться на другие топпинг-группы; цикл зависимостей
// делает группу скрытой, а не зацикливает обход.
type visibility struct {
	item  *domain.MenuItem
	sel   domain.Selection
	state map[string]visState
}

func newVisibility(item *domain.MenuItem, sel domain.Selection) *visibility {
	return &visibility{
		item:  item,
		sel:   sel,
		state: make(map[string]visState, len(item.ToppingGroups)),
	}
}

func (v *visibility) visible(groupID string) bool {
	switch v.state[groupID] {
	case visVisible:
		return true
	case visHidden:
		return false
	case visEvaluating:
		// Цикл в графе зависимостей: группа считается всегда скрытой.
		v.state[groupID] = visHidden
		return false
	}

	group, ok := v.item.ToppingGroupByID(groupID)
	if !ok {
		v.state[groupID] = visHidden
		return false
	}
	if len(group.VisibleWhen) == 0 {
		v.state[groupID] = visVisible
		return true
	}

	v.state[groupID] = visEvaluating
	result := true
	for _, cond := range group.VisibleWhen {
		if !v.conditionMet(cond) {
			result = false
			break
		}
	}

	// Обнаруженный внутри обхода цикл фиксирует состояние hidden; не перезаписываем его.
	if v.state[groupID] == visEvaluating {
		if result {
			v.state[groupID] = visVisible
		} else {
			v.state[groupID] = visHidden
		}
	}
	return v.state[groupID] == visVisible
}

// conditionMet проверяет одно условие видимости против полного текущего выбора.
// Выбор в скрытой группе не активирует зависящие от неё группы.
func (v *visibility) conditionMet(cond domain.VisibilityCondition) bool {
	if _, ok := v.item.OptionGroupByID(cond.SourceGroupID); ok {
		return v.sel.OptionSelected(cond.SourceGroupID, cond.ChoiceID)
	}
	if _, ok := v.item.ToppingGroupByID(cond.SourceGroupID); ok {
		if !v.visible(cond.SourceGroupID) {
			return false
		}
		return v.sel.ToppingSelected(cond.SourceGroupID, cond.ChoiceID)
	}
	return false
}
