package remote

import "github.com/tmorel/cleansync/internal/model"

// wireTask is the task record as the remote store represents it: flat
// snake_case fields. The gateway owns the translation between this shape
// and model.Task; nothing outside this package sees wire names.
type wireTask struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Area           string `json:"area"`
	Category       string `json:"category"`
	JobDescription string `json:"job_description"`
	Assignee       string `json:"assignee"`
	Status         string `json:"status"`
	Remarks        string `json:"remarks"`
	PhotoBefore    string `json:"photo_before"`
	PhotoProgress  string `json:"photo_progress"`
	PhotoAfter     string `json:"photo_after"`
}

// wireArea is the area record on the wire.
type wireArea struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func taskToWire(t model.Task) wireTask {
	return wireTask{
		ID:             t.ID,
		Date:           t.Date,
		Area:           t.Area,
		Category:       t.Category,
		JobDescription: t.JobDescription,
		Assignee:       t.Assignee,
		Status:         string(t.Status),
		Remarks:        t.Remarks,
		PhotoBefore:    t.PhotoBefore,
		PhotoProgress:  t.PhotoProgress,
		PhotoAfter:     t.PhotoAfter,
	}
}

func taskFromWire(w wireTask) model.Task {
	return model.Task{
		ID:             w.ID,
		Date:           w.Date,
		Area:           w.Area,
		Category:       w.Category,
		JobDescription: w.JobDescription,
		Assignee:       w.Assignee,
		Status:         model.Status(w.Status),
		Remarks:        w.Remarks,
		PhotoBefore:    w.PhotoBefore,
		PhotoProgress:  w.PhotoProgress,
		PhotoAfter:     w.PhotoAfter,
	}
}

func areaToWire(a model.Area) wireArea {
	return wireArea{Name: a.Name, Category: a.Category}
}

func areaFromWire(w wireArea) model.Area {
	return model.Area{Name: w.Name, Category: w.Category}
}
