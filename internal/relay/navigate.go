package relay

import (
	"strconv"
	"strings"

	"github.com/talesofkitsune/applybot/internal/roles"
)

// Screen — то, что пользователь видит как текущее меню.
type Screen struct {
	Text string
	Menu Menu
}

// ActionTag — закрытое множество переходов. Непрозрачные строки действий
// ("roles", "role:editor") отображаются в теги на границе, дальше ядро
// строк не различает. Неймспейс строки — это и класс дебаунса, поэтому
// у каждого семантически разного перехода он свой: гасится только
// дребезг одного и того же действия, а не вся навигация разом.
type ActionTag int

const (
	ActNone ActionTag = iota
	ActHome
	ActShowRoles
	ActShowAbout
	ActApply
	ActBrowseRole
	ActApplyRole
	ActStartTest
	ActBack
	ActCancel
)

// parseAction splits an opaque action string into (tag, argument).
// Unknown namespaces map to ActNone and are ignored upstream.
func parseAction(data string) (ActionTag, string) {
	ns, arg := data, ""
	if i := strings.IndexByte(data, ':'); i >= 0 {
		ns, arg = data[:i], data[i+1:]
	}

	switch ns {
	case "home":
		return ActHome, ""
	case "roles":
		return ActShowRoles, ""
	case "about":
		return ActShowAbout, ""
	case "apply":
		return ActApply, ""
	case "back":
		return ActBack, ""
	case "cancel":
		return ActCancel, ""
	case "role":
		return ActBrowseRole, arg
	case "pick":
		return ActApplyRole, arg
	case "test":
		if arg == "start" {
			return ActStartTest, ""
		}
	}
	return ActNone, ""
}

// navStep — результат чистого перехода: новое состояние сессии и экран.
// Побочные эффекты (запуск дедлайна, отмена) исполняет сервис.
type navStep struct {
	state     State
	flow      Flow
	role      string
	startTest bool
	cancel    bool
	screen    Screen
}

type navigator struct {
	cat        *roles.Catalog
	windowDays int
}

type navKey struct {
	state State
	tag   ActionTag
}

// step is a pure function of (current state, current role, tag, argument).
// The second result is false when the action is not a legal edge from the
// current state.
func (n *navigator) step(cur State, curRole string, tag ActionTag, arg string) (navStep, bool) {
	// Глобальные ребра: доступны из любого состояния.
	switch tag {
	case ActHome:
		return navStep{state: StateIdle, flow: FlowNone, role: curRole, screen: n.homeScreen("")}, true
	case ActShowAbout:
		return navStep{state: StateIdle, flow: FlowNone, role: curRole, screen: n.aboutScreen()}, true
	case ActCancel:
		return navStep{state: StateIdle, flow: FlowNone, role: "", cancel: true,
			screen: n.homeScreen("Заявка отменена. Если передумаешь — мы всегда рядом. 🦊\n\n")}, true
	case ActShowRoles:
		return navStep{state: StateRoleBrowsing, flow: FlowBrowsing, role: curRole, screen: n.browseScreen()}, true
	case ActApply:
		return navStep{state: StateApplySelect, flow: FlowApplying, role: curRole, screen: n.applySelectScreen()}, true
	}

	fn, ok := n.edges()[navKey{state: cur, tag: tag}]
	if !ok {
		return navStep{}, false
	}
	return fn(curRole, arg)
}

type stepFn func(curRole, arg string) (navStep, bool)

// edges — таблица переходов: обратные ребра структурно инвертируют прямые,
// "назад" всегда ведет на экран родительского состояния.
func (n *navigator) edges() map[navKey]stepFn {
	return map[navKey]stepFn{
		{StateRoleBrowsing, ActBrowseRole}: func(_, arg string) (navStep, bool) {
			role, ok := n.cat.Get(arg)
			if !ok {
				return navStep{}, false
			}
			return navStep{state: StateRoleDetail, flow: FlowBrowsing, role: role.Key,
				screen: n.detailScreen(role, false)}, true
		},
		{StateRoleBrowsing, ActBack}: func(curRole, _ string) (navStep, bool) {
			return navStep{state: StateIdle, flow: FlowNone, role: curRole, screen: n.homeScreen("")}, true
		},
		{StateRoleDetail, ActBack}: func(curRole, _ string) (navStep, bool) {
			return navStep{state: StateRoleBrowsing, flow: FlowBrowsing, role: curRole, screen: n.browseScreen()}, true
		},
		{StateApplySelect, ActApplyRole}: func(_, arg string) (navStep, bool) {
			role, ok := n.cat.Get(arg)
			if !ok {
				return navStep{}, false
			}
			return navStep{state: StateApplyDetail, flow: FlowApplying, role: role.Key,
				screen: n.detailScreen(role, true)}, true
		},
		{StateApplySelect, ActBack}: func(curRole, _ string) (navStep, bool) {
			return navStep{state: StateIdle, flow: FlowNone, role: curRole, screen: n.homeScreen("")}, true
		},
		{StateApplyDetail, ActStartTest}: func(curRole, _ string) (navStep, bool) {
			role, ok := n.cat.Get(curRole)
			if !ok {
				return navStep{}, false
			}
			return navStep{state: StateTestIssued, flow: FlowApplying, role: role.Key,
				startTest: true, screen: n.testIssuedScreen(role)}, true
		},
		{StateApplyDetail, ActBack}: func(curRole, _ string) (navStep, bool) {
			return navStep{state: StateApplySelect, flow: FlowApplying, role: curRole,
				screen: n.applySelectScreen()}, true
		},
	}
}

// --- экраны ---

func backRow() []Button {
	return []Button{{Text: "⬅️ Назад", Data: "back"}}
}

func (n *navigator) homeScreen(prefix string) Screen {
	return Screen{
		Text: prefix + "Присоединяйся к команде Tales of Kitsune — магия начинается с первой главы.\n\n" +
			"Выбери нужный раздел ниже:",
		Menu: Menu{
			{
				{Text: "🎨 Вакансии", Data: "roles"},
				{Text: "🦊 О команде", Data: "about"},
			},
			{
				{Text: "📨 Подать заявку", Data: "apply"},
			},
		},
	}
}

func (n *navigator) aboutScreen() Screen {
	return Screen{
		Text: "🦊 Tales of Kitsune — команда, создающая качественные переводы и оформление манхв.\n\n" +
			"Мы объединяем переводчиков, редакторов и дизайнеров, чтобы оживлять истории " +
			"с атмосферой и вниманием к деталям.",
		Menu: Menu{{{Text: "⬅️ На главную", Data: "home"}}},
	}
}

func (n *navigator) browseScreen() Screen {
	return n.roleListScreen("🌸 Доступные направления — выбери, чтобы узнать подробнее:", "role")
}

func (n *navigator) applySelectScreen() Screen {
	return n.roleListScreen("📨 На какую роль подаешь заявку?", "pick")
}

func (n *navigator) roleListScreen(header, ns string) Screen {
	menu := Menu{}
	for _, r := range n.cat.All() {
		menu = append(menu, []Button{{Text: r.Title, Data: ns + ":" + r.Key}})
	}
	menu = append(menu, backRow())
	return Screen{Text: header, Menu: menu}
}

func (n *navigator) detailScreen(role *roles.Role, applying bool) Screen {
	var b strings.Builder
	b.WriteString("✨ " + role.Title + "\n\n")
	b.WriteString(role.Description + "\n")
	for _, link := range role.GuideLinks {
		b.WriteString("\n📖 Гайд: " + link)
	}
	if role.FolderLink != "" {
		b.WriteString("\n📁 Материалы теста: " + role.FolderLink)
	}

	if !applying {
		return Screen{Text: b.String(), Menu: Menu{backRow()}}
	}

	b.WriteString("\n\nЧтобы подать заявку, расскажи о себе в свободной форме:\n\n" +
		"Имя / Никнейм\nВозраст (по желанию)\nКраткое описание опыта (если есть)\n\n" +
		"Когда будешь готов(а) к тестовому — жми кнопку ниже.")
	return Screen{
		Text: b.String(),
		Menu: Menu{
			{{Text: "🚀 Получить тестовое", Data: "test:start"}},
			backRow(),
			{{Text: "✖️ Отменить заявку", Data: "cancel"}},
		},
	}
}

func (n *navigator) testIssuedScreen(role *roles.Role) Screen {
	text := "🚀 Тестовое по роли «" + role.Title + "» выдано!\n\n" +
		"Срок — " + strconv.Itoa(n.windowDays) + " дн. с этого момента. " +
		"Готовую работу (текст, фото, файлы — можно альбомом) отправляй прямо в этот чат, " +
		"куратор получит её автоматически."
	return Screen{
		Text: text,
		Menu: Menu{
			{{Text: "✖️ Отменить заявку", Data: "cancel"}},
			{{Text: "⬅️ На главную", Data: "home"}},
		},
	}
}
