package i18n

// Message catalogues, keyed by locale. Positional parameters are written
// {0}, {1}, ... and filled from apperror.AppError.Params.
var catalogs = map[string]map[string]string{
	"en": {
		"errors.app.general": "An unexpected error occurred",

		"errors.request.malformed_body": "Request body is not valid JSON",
		"errors.request.invalid_query":  "Invalid query parameter {0}",

		"errors.validation.failed": "Invalid input",
		"errors.validation.field":  "Invalid value for {0}: {1}",

		"errors.auth.not_authenticated":   "Not authenticated",
		"errors.auth.invalid_token":       "Could not validate credentials",
		"errors.auth.token_expired":       "Token has expired",
		"errors.auth.invalid_credentials": "Incorrect username or password",
		"errors.auth.forbidden":           "You do not have permission to perform this action",

		"errors.db.connection_error": "Database is unavailable",
		"errors.db.not_found":        "Record not found with id {0}",
		"errors.db.already_exists":   "Record already exists",
		"errors.db.integrity_error":  "Data integrity error",

		"errors.user.not_found":        "User not found with id {0}",
		"errors.user.already_exists":   "User already exists",
		"errors.user.integrity_error":  "User data violates an integrity constraint",
		"errors.user.validation_error": "Invalid user data",

		"errors.userprofile.not_found":        "User profile not found with id {0}",
		"errors.userprofile.already_exists":   "User profile already exists",
		"errors.userprofile.integrity_error":  "User profile references a user that does not exist",
		"errors.userprofile.validation_error": "Invalid user profile data",

		"errors.todo.not_found":        "Todo not found with id {0}",
		"errors.todo.already_exists":   "Todo already exists",
		"errors.todo.integrity_error":  "Todo references a user or tag that does not exist",
		"errors.todo.validation_error": "Invalid todo data",

		"errors.tag.not_found":        "Tag not found with id {0}",
		"errors.tag.already_exists":   "Tag already exists",
		"errors.tag.integrity_error":  "Tag data violates an integrity constraint",
		"errors.tag.validation_error": "Invalid tag data",

		"errors.product.not_found":        "Product not found with id {0}",
		"errors.product.already_exists":   "Product already exists",
		"errors.product.integrity_error":  "Product data violates an integrity constraint",
		"errors.product.validation_error": "Invalid product data",
	},
	"ru": {
		"errors.app.general": "Произошла непредвиденная ошибка",

		"errors.request.malformed_body": "Тело запроса не является корректным JSON",
		"errors.request.invalid_query":  "Некорректный параметр запроса {0}",

		"errors.validation.failed": "Некорректные входные данные",
		"errors.validation.field":  "Некорректное значение поля {0}: {1}",

		"errors.auth.not_authenticated":   "Требуется аутентификация",
		"errors.auth.invalid_token":       "Не удалось проверить учётные данные",
		"errors.auth.token_expired":       "Срок действия токена истёк",
		"errors.auth.invalid_credentials": "Неверное имя пользователя или пароль",
		"errors.auth.forbidden":           "У вас нет прав на это действие",

		"errors.db.connection_error": "База данных недоступна",
		"errors.db.not_found":        "Запись с id {0} не найдена",
		"errors.db.already_exists":   "Запись уже существует",
		"errors.db.integrity_error":  "Нарушена целостность данных",

		"errors.user.not_found":        "Пользователь с id {0} не найден",
		"errors.user.already_exists":   "Пользователь уже существует",
		"errors.user.integrity_error":  "Данные пользователя нарушают ограничение целостности",
		"errors.user.validation_error": "Некорректные данные пользователя",

		"errors.userprofile.not_found":        "Профиль пользователя с id {0} не найден",
		"errors.userprofile.already_exists":   "Профиль пользователя уже существует",
		"errors.userprofile.integrity_error":  "Профиль ссылается на несуществующего пользователя",
		"errors.userprofile.validation_error": "Некорректные данные профиля",

		"errors.todo.not_found":        "Задача с id {0} не найдена",
		"errors.todo.already_exists":   "Задача уже существует",
		"errors.todo.integrity_error":  "Задача ссылается на несуществующего пользователя или тег",
		"errors.todo.validation_error": "Некорректные данные задачи",

		"errors.tag.not_found":        "Тег с id {0} не найден",
		"errors.tag.already_exists":   "Тег уже существует",
		"errors.tag.integrity_error":  "Данные тега нарушают ограничение целостности",
		"errors.tag.validation_error": "Некорректные данные тега",

		"errors.product.not_found":        "Товар с id {0} не найден",
		"errors.product.already_exists":   "Товар уже существует",
		"errors.product.integrity_error":  "Данные товара нарушают ограничение целостности",
		"errors.product.validation_error": "Некорректные данные товара",
	},
}
