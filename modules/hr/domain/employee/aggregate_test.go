package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mavis-digital/hrbot/pkg/recordstore"
)

func row(identity, fio, prev, phone, date, company, dept, pos, isMain string) recordstore.Fields {
	return recordstore.Fields{
		"Name":             identity,
		"FIO":              fio,
		"Previous_surname": prev,
		"Phone_private":    phone,
		"Date_employment":  date,
		"Company":          company,
		"Department":       dept,
		"Position":         pos,
		"Is_main":          isMain,
	}
}

func TestAggregateGroupsByIdentity(t *testing.T) {
	rows := []recordstore.Fields{
		row("111", "Иванов Иван", "", "+79991234567", "2024-01-10", "Мавис-Строй", "Отдел продаж", "Менеджер", "Да"),
		row("111", "Иванов Иван", "Петров", "8(999)123-45-67, +79990000001", "2023-06-01", "СоцСтрой", "Бухгалтерия", "Бухгалтер", "Нет"),
		row("222", "Сидорова Анна", "", "", "", "ВОТОНЯ", "", "Продавец", "Да"),
	}

	got := Aggregate(rows)
	require.Len(t, got, 2)

	ivan := got["111"]
	require.NotNil(t, ivan)
	require.Equal(t, "Иванов Иван", ivan.FullName)
	require.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), ivan.HireDate)
	require.Equal(t, []string{"+79990000001", "+79991234567"}, ivan.Phones.Sorted())
	require.Equal(t, []string{"Петров"}, ivan.PreviousSurnames.Sorted())
	require.Equal(t, []string{"Мавис-Строй", "СоцСтрой"}, ivan.CompanyTitles())
	require.Equal(t, []string{"Бухгалтерия", "Отдел продаж"}, ivan.DepartmentTitles())
	require.Equal(t, []string{"Бухгалтер", "Менеджер"}, ivan.PositionTitles())
	require.Len(t, ivan.Employments, 2)
	require.True(t, ivan.Employments[0].IsMain)
	require.False(t, ivan.Employments[1].IsMain)

	anna := got["222"]
	require.NotNil(t, anna)
	require.True(t, anna.HireDate.IsZero())
	require.Empty(t, anna.Phones.Sorted())
}

func TestAggregateDropsBadRows(t *testing.T) {
	rows := []recordstore.Fields{
		row("", "Без Снилса", "", "", "", "", "", "", ""),
		row("333", "", "", "", "", "", "", "", ""),
		row("444", "Годный Сотрудник", "", "", "not-a-date", "", "", "", ""),
	}
	got := Aggregate(rows)
	require.Len(t, got, 1)
	require.True(t, got["444"].HireDate.IsZero())
}

func TestAggregateComparisonTokensAreOrderInsensitive(t *testing.T) {
	a := []recordstore.Fields{
		row("111", "Иванов Иван", "", "+79991234567", "2024-01-10", "Мавис-Строй", "Отдел продаж", "Менеджер", "Да"),
		row("111", "Иванов Иван", "", "+79990000001", "2023-06-01", "СоцСтрой", "Бухгалтерия", "Бухгалтер", "Нет"),
	}
	b := []recordstore.Fields{a[1], a[0]}

	left := Aggregate(a)["111"]
	right := Aggregate(b)["111"]
	require.True(t, left.ComparisonTokens.Equal(right.ComparisonTokens))
	require.Equal(t, left.HireDate, right.HireDate)
	require.Equal(t, left.Phones.Sorted(), right.Phones.Sorted())
}

func TestAggregatePhonelessRowStillTokenized(t *testing.T) {
	withPhone := Aggregate([]recordstore.Fields{
		row("111", "Иванов Иван", "", "+79991234567", "", "Мавис-Строй", "", "Менеджер", "Да"),
	})["111"]
	withoutPhone := Aggregate([]recordstore.Fields{
		row("111", "Иванов Иван", "", "", "", "Мавис-Строй", "", "Менеджер", "Да"),
	})["111"]
	require.False(t, withPhone.ComparisonTokens.Equal(withoutPhone.ComparisonTokens))
}

func TestParseDate(t *testing.T) {
	require.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), ParseDate("2024-03-08"))
	require.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), ParseDate("2024-03-08T10:00:00Z"))
	require.True(t, ParseDate("").IsZero())
	require.True(t, ParseDate("08.03.2024").IsZero())
}
