package services

import "github.com/restreamkit/volunteer-system/models"

// ResolveEffectiveBindings сводит привязки события и игры в действующий
// список ролей события. Игровая привязка выпадает из результата только если
// её тип роли отключён для события или само событие требует полностью
// собственной конфигурации. Переопределения Discord-ролей применяются к
// любой оставшейся привязке с совпадающим типом роли.
//
// Порядок результата: сначала привязки события, затем игровые, каждая группа
// в порядке входного списка (репозитории сортируют по имени типа роли).
func ResolveEffectiveBindings(
	eventBindings []*models.RoleBinding,
	gameBindings []*models.RoleBinding,
	overrides []*models.EventDiscordRoleOverride,
	disabled []*models.EventDisabledRoleBinding,
	forceCustom bool,
) []models.EffectiveRoleBinding {
	overrideByRoleType := make(map[int]int64, len(overrides))
	for _, o := range overrides {
		overrideByRoleType[o.RoleTypeID] = o.DiscordRoleID
	}
	disabledRoleTypes := make(map[int]bool, len(disabled))
	for _, d := range disabled {
		disabledRoleTypes[d.RoleTypeID] = true
	}

	effective := make([]models.EffectiveRoleBinding, 0, len(eventBindings)+len(gameBindings))

	for _, b := range eventBindings {
		eb := models.EffectiveRoleBinding{
			ID:            b.ID,
			RoleTypeID:    b.RoleTypeID,
			RoleTypeName:  b.RoleTypeName,
			MinCount:      b.MinCount,
			MaxCount:      b.MaxCount,
			DiscordRoleID: b.DiscordRoleID,
			AutoApprove:   b.AutoApprove,
			IsGameBinding: false,
		}
		if roleID, ok := overrideByRoleType[b.RoleTypeID]; ok {
			eb.DiscordRoleID = &roleID
			eb.HasEventOverride = true
		}
		effective = append(effective, eb)
	}

	if forceCustom {
		return effective
	}

	for _, b := range gameBindings {
		if disabledRoleTypes[b.RoleTypeID] {
			continue
		}
		eb := models.EffectiveRoleBinding{
			ID:            b.ID,
			RoleTypeID:    b.RoleTypeID,
			RoleTypeName:  b.RoleTypeName,
			MinCount:      b.MinCount,
			MaxCount:      b.MaxCount,
			DiscordRoleID: b.DiscordRoleID,
			AutoApprove:   b.AutoApprove,
			IsGameBinding: true,
		}
		if roleID, ok := overrideByRoleType[b.RoleTypeID]; ok {
			eb.DiscordRoleID = &roleID
			eb.HasEventOverride = true
		}
		effective = append(effective, eb)
	}

	return effective
}
