package engine

import "math"

// Round1 округляет до одного знака после запятой (половина — от нуля).
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// NextRating учитывает новую оценку в скользящем среднем.
//
// Возвращает новое среднее (округлённое до 0.1) и новое количество отзывов.
// Вызывающий код обязан сериализовать чтение avg/count и запись результата
// для одного шаблона.
func NextRating(avg float64, count int64, rating float64) (float64, int64) {
	newCount := count + 1
	newAvg := Round1((avg*float64(count) + rating) / float64(newCount))
	return newAvg, newCount
}
