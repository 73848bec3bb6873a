package metadata

import (
	"github.com/ichaly/ideabase/erd/protocol"
)

// memHoster 按插入顺序保存模型
type memHoster struct {
	classes []*protocol.Class
}

func (my *memHoster) PutClass(class *protocol.Class) error {
	for i, c := range my.classes {
		if c.Name == class.Name {
			my.classes[i] = class
			return nil
		}
	}
	my.classes = append(my.classes, class)
	return nil
}

func (my *memHoster) GetClass(name string) (*protocol.Class, bool) {
	for _, c := range my.classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (my *memHoster) names() []string {
	list := make([]string, 0, len(my.classes))
	for _, c := range my.classes {
		list = append(list, c.Name)
	}
	return list
}

func (my *memHoster) fields(name string) []string {
	c, ok := my.GetClass(name)
	if !ok {
		return nil
	}
	list := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		list = append(list, f.Name)
	}
	return list
}

func (my *memHoster) relations() []protocol.Relation {
	var list []protocol.Relation
	for _, c := range my.classes {
		list = append(list, c.Relations()...)
	}
	return list
}
