package calendar

// Page — срез отсортированных результатов подбора.
type Page[T any] struct {
	Items    []T
	Page     int // с единицы
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int // до нарезки
}

// DefaultPageSize задаётся из конфигурации при старте.
var DefaultPageSize = 20

// Paginate режет уже ранжированный список. Номер страницы за пределами
// списка даёт пустую страницу с Total, а не ошибку.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	total := len(items)
	from := min((page-1)*pageSize, total)
	to := min(from+pageSize, total)

	return Page[T]{
		Items:    items[from:to],
		Page:     page,
		PageSize: pageSize,
		HasNext:  to < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}

// MapPage нужен транспорту: страница моделей становится страницей сообщений.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return Page[U]{Items: items, Page: p.Page, PageSize: p.PageSize, HasNext: p.HasNext, HasPrev: p.HasPrev, Total: p.Total}
}
