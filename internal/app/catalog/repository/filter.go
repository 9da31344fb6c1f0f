package repository

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildCategoryFilter переводит query-параметр ?categories=c1,c2 в фильтр MongoDB
// Пустая строка - все товары. Нераспознанный идентификатор просто не матчит
// ни один документ, это не ошибка. Семантика множества, порядок не важен.
func BuildCategoryFilter(raw string) bson.M {
	if raw == "" {
		return bson.M{}
	}

	parts := strings.Split(raw, ",")
	ids := make([]primitive.ObjectID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(part)
		if err != nil {
			// Невалидный hex не может ссылаться на категорию - пропускаем
			continue
		}
		ids = append(ids, id)
	}

	// Фильтр запрошен, но ни один идентификатор не разобран -
	// пустой $in гарантирует пустую выборку вместо выдачи всего каталога
	return bson.M{"category": bson.M{"$in": ids}}
}
