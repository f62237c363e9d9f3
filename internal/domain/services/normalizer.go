package services

import (
	"fmt"
	"sort"
)

// recordRules описывает, где искать список записей в декодированном ответе.
// Upstream возвращает одни и те же данные под разными обертками в зависимости
// от версии метода, поэтому правила упорядочены от наиболее ожидаемой формы
// к эвристикам.
type recordRules struct {
	// envelopeKeys — кандидаты на ключ обертки верхнего уровня ("result")
	envelopeKeys []string
	// listKeys — кандидаты на ключ списка записей ("products", "items")
	listKeys []string
}

// ShapeError сигнализирует, что ни одно правило не нашло список записей.
// Для синхронизации это фатальная ошибка.
type ShapeError struct {
	Keys []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("no records found; payload shape: %v", e.Keys)
}

// extractRecords находит список записей в ответе API неизвестной формы.
// Правила применяются по порядку, выигрывает первое совпавшее:
//  1. обертка содержит поле-список под одним из listKeys;
//  2. значение обертки само является списком;
//  3. список лежит прямо на верхнем уровне под одним из listKeys;
//  4. весь ответ является списком;
//  5. внутри обертки берется первое поле-список, чей первый элемент
//     похож на запись (объект с ключами); порядок обхода фиксируется
//     сортировкой ключей.
func extractRecords(payload interface{}, rules recordRules) ([]interface{}, error) {
	root, isObject := payload.(map[string]interface{})

	if isObject {
		for _, envKey := range rules.envelopeKeys {
			switch envelope := root[envKey].(type) {
			case map[string]interface{}:
				for _, listKey := range rules.listKeys {
					if list, ok := envelope[listKey].([]interface{}); ok {
						return list, nil
					}
				}
			case []interface{}:
				return envelope, nil
			}
		}

		for _, listKey := range rules.listKeys {
			if list, ok := root[listKey].([]interface{}); ok {
				return list, nil
			}
		}
	}

	if list, ok := payload.([]interface{}); ok {
		return list, nil
	}

	if isObject {
		for _, envKey := range rules.envelopeKeys {
			envelope, ok := root[envKey].(map[string]interface{})
			if !ok {
				continue
			}
			for _, key := range sortedKeys(envelope) {
				list, ok := envelope[key].([]interface{})
				if !ok || len(list) == 0 {
					continue
				}
				if _, ok := list[0].(map[string]interface{}); ok {
					return list, nil
				}
			}
		}
	}

	return nil, &ShapeError{Keys: sortedKeys(root)}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
