package program

// Phase is one of the three named stages of the 30-day program.
type Phase struct {
	Name  string
	Focus string
}

// Classify maps a program day to its phase. The bands are fixed: days 1-7,
// 8-14, and everything after. Callers are expected to clamp the day to the
// program range first; any integer still resolves to one of the three
// stages.
func Classify(day int) Phase {
	if day <= 7 {
		return Phase{
			Name:  "第一阶段：排毒消肿",
			Focus: "清淡易消化，拒绝油腻，主攻排出恶露和多余水分。",
		}
	}
	if day <= 14 {
		return Phase{
			Name:  "第二阶段：调理修复",
			Focus: "收缩内脏，修复子宫，增加蛋白质摄入，促进乳汁分泌。",
		}
	}
	return Phase{
		Name:  "第三阶段：滋补养颜",
		Focus: "进补养身，改善体质，根据体质进行深度滋养。",
	}
}
