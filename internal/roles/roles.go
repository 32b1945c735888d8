package roles

// Role — статическое описание вакансии. Загружается при старте,
// дальше только читается.
type Role struct {
	Key         string
	Title       string
	Description string
	GuideLinks  []string
	FolderLink  string
}

type Catalog struct {
	list   []Role
	byKey  map[string]*Role
	topics map[string]int
}

// NewCatalog строит каталог с привязкой ролей к топикам стафф-группы.
// Роль без топика уходит в общий канал.
func NewCatalog(topics map[string]int) *Catalog {
	c := &Catalog{
		list:   defaultRoles,
		byKey:  make(map[string]*Role, len(defaultRoles)),
		topics: topics,
	}
	for i := range c.list {
		c.byKey[c.list[i].Key] = &c.list[i]
	}
	return c
}

func (c *Catalog) All() []Role { return c.list }

func (c *Catalog) Get(key string) (*Role, bool) {
	r, ok := c.byKey[key]
	return r, ok
}

// TopicID возвращает топик роли или 0, если он не настроен.
func (c *Catalog) TopicID(key string) int {
	return c.topics[key]
}

var defaultRoles = []Role{
	{
		Key:         "translator",
		Title:       "Переводчик (корейский / английский)",
		Description: "Перевод глав с корейского или английского. Важно чувство языка, а не словарная дословность.",
		GuideLinks:  []string{"https://teletype.in/@talesofkitsune/translate-guide"},
	},
	{
		Key:         "editor",
		Title:       "Редактор",
		Description: "Вычитка и литературная правка перевода: стиль, ритм реплик, естественные диалоги.",
		GuideLinks:  []string{"https://teletype.in/@talesofkitsune/edit-guide"},
	},
	{
		Key:         "typer",
		Title:       "Тайпер",
		Description: "Верстка текста в облачка: шрифты, кегль, расстановка. Нужен Photoshop.",
		GuideLinks:  []string{"https://teletype.in/@talesofkitsune/type-guide"},
		FolderLink:  "https://drive.google.com/drive/folders/kitsune-type-test",
	},
	{
		Key:         "cleaner",
		Title:       "Клинер",
		Description: "Чистка сканов от исходного текста и артефактов, восстановление фона.",
		GuideLinks:  []string{"https://teletype.in/@talesofkitsune/clean-guide"},
		FolderLink:  "https://drive.google.com/drive/folders/kitsune-clean-test",
	},
	{
		Key:         "corrector",
		Title:       "Корректор",
		Description: "Финальная проверка глав: опечатки, пунктуация, единообразие имен и терминов.",
		GuideLinks:  []string{"https://teletype.in/@talesofkitsune/proof-guide"},
	},
	{
		Key:         "designer",
		Title:       "Дизайнер обложек",
		Description: "Оформление обложек и анонсов: логотипы, надписи, цветокоррекция.",
		GuideLinks:  []string{"https://teletype.in/@talesofkitsune/design-guide"},
	},
}
